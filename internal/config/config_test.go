package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carved4/go-securebuf/internal/securebuf"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LockerSystem, cfg.Locker)
	assert.Equal(t, AllocatorHeap, cfg.Allocator)
	assert.False(t, cfg.Metrics)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, true)
	assert.Error(t, err)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
locker: none
allocator: mmap
metrics: true
keyring:
  service: test-service
kdf:
  pbkdf2_iterations: 1000
  key_length: 64
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, LockerNone, cfg.Locker)
	assert.Equal(t, AllocatorMmap, cfg.Allocator)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "test-service", cfg.Keyring.Service)
	assert.Equal(t, "securebuf:", cfg.Keyring.KernelPrefix)

	pb := cfg.PBKDF2Params()
	assert.Equal(t, 1000, pb.Iterations)
	assert.Equal(t, 64, pb.KeyLength)

	ar := cfg.Argon2Params()
	assert.Equal(t, Default().KDF.Argon2Time, ar.Time)
	assert.Equal(t, 64, ar.KeyLength)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"locker", "locker: tmpfs\n", "locker:"},
		{"allocator", "allocator: stack\n", "allocator:"},
		{"service", "keyring:\n  service: \"\"\n", "keyring.service"},
		{"iterations", "kdf:\n  pbkdf2_iterations: 0\n", "kdf.pbkdf2_iterations"},
		{"argon time", "kdf:\n  argon2_time: 0\n", "kdf.argon2_time"},
		{"argon threads", "kdf:\n  argon2_threads: 0\n", "kdf.argon2_threads"},
		{"argon memory", "kdf:\n  argon2_memory_kib: 8\n", "kdf.argon2_memory_kib"},
		{"key length", "kdf:\n  key_length: 8\n", "kdf.key_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeConfig(t, "locker: [\n"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Locker = LockerNone

	opts, metered, err := cfg.Options(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, metered)

	buf, err := securebuf.New(32, opts...)
	require.NoError(t, err)
	assert.Equal(t, 32, buf.Cap())
	buf.Destroy()
}

func TestOptions_Metered(t *testing.T) {
	cfg := Default()
	cfg.Locker = LockerNone
	reg := prometheus.NewRegistry()

	opts, metered, err := cfg.Options(nil, reg)
	require.NoError(t, err)
	require.NotNil(t, metered)

	buf, err := securebuf.New(16, opts...)
	require.NoError(t, err)
	buf.Destroy()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "securebuf_lock_operations_total")
	assert.Contains(t, names, "securebuf_locked_bytes")
}
