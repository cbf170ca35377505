package commands

import (
	"bytes"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/carved4/go-securebuf/internal/fingerprint"
	"github.com/carved4/go-securebuf/internal/kdf"
	"github.com/carved4/go-securebuf/internal/keysource"
	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
)

const testConfig = `
locker: none
metrics: true
keyring:
  service: securebuf-test
kdf:
  pbkdf2_iterations: 1000
  argon2_time: 1
  argon2_memory_kib: 64
  argon2_threads: 1
  key_length: 32
`

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	keyring.MockInit()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return &App{}, path
}

func execute(t *testing.T, app *App, configPath string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand(app)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", configPath}, args...))

	err := root.Execute()
	return out.String(), err
}

func writeSecret(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fingerprintOf(t *testing.T, b []byte) string {
	t.Helper()
	buf, err := securebuf.FromBytes(b, securebuf.WithLocker(memlock.Noop()))
	require.NoError(t, err)
	defer buf.Destroy()
	return fingerprint.Of(buf)
}

func passwords(t *testing.T, answers ...string) func(string) (*securebuf.Buffer, error) {
	return func(string) (*securebuf.Buffer, error) {
		require.NotEmpty(t, answers, "unexpected password prompt")
		next := answers[0]
		answers = answers[1:]
		return securebuf.FromBytes([]byte(next), securebuf.WithLocker(memlock.Noop()))
	}
}

func TestRoot_MissingExplicitConfig(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := execute(t, app, filepath.Join(t.TempDir(), "missing.yaml"), "probe", "--size", "0")
	assert.Error(t, err)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	app, path := newTestApp(t)
	_, err := execute(t, app, path, "--log-level", "loud", "probe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level")
}

func TestProbe(t *testing.T) {
	app, path := newTestApp(t)

	out, err := execute(t, app, path, "probe", "--size", "8192")
	require.NoError(t, err)

	assert.Contains(t, out, "memory lock probe")
	assert.Contains(t, out, "locked 8.0 KiB")
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "elevated")
}

func TestProbe_NegativeSize(t *testing.T) {
	app, path := newTestApp(t)
	_, err := execute(t, app, path, "probe", "--size", "-1")
	assert.Error(t, err)
}

func TestFingerprint_File(t *testing.T) {
	app, path := newTestApp(t)

	out, err := execute(t, app, path, "fingerprint", writeSecret(t, "  hunter2hunter2\n"))
	require.NoError(t, err)
	assert.Equal(t, fingerprintOf(t, []byte("hunter2hunter2")), strings.TrimSpace(out))
}

func TestFingerprint_EmptyFile(t *testing.T) {
	app, path := newTestApp(t)

	_, err := execute(t, app, path, "fingerprint", writeSecret(t, " \n"))
	assert.ErrorIs(t, err, keysource.ErrEmpty)
}

func TestKeyring_StoreFingerprintDelete(t *testing.T) {
	app, path := newTestApp(t)
	secret := writeSecret(t, "correct horse battery staple\n")
	want := fingerprintOf(t, []byte("correct horse battery staple"))

	out, err := execute(t, app, path, "keyring", "store", "--from", secret, "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "stored 'alice'")
	assert.Contains(t, out, want)

	out, err = execute(t, app, path, "keyring", "fingerprint", "alice")
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))

	_, err = execute(t, app, path, "keyring", "delete", "alice")
	require.NoError(t, err)

	_, err = execute(t, app, path, "keyring", "fingerprint", "alice")
	assert.ErrorIs(t, err, keysource.ErrNotFound)
}

func TestKeyring_UnknownBackend(t *testing.T) {
	app, path := newTestApp(t)
	_, err := execute(t, app, path, "keyring", "--backend", "vault", "fingerprint", "alice")
	assert.Error(t, err)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	app, path := newTestApp(t)
	sealedPath := filepath.Join(t.TempDir(), "token.sealed")

	_, err := execute(t, app, path, "keyring", "store", "--generate", "32", "backup")
	require.NoError(t, err)

	for _, alg := range []string{"xchacha20-poly1305", "aes-gcm"} {
		t.Run(alg, func(t *testing.T) {
			_, err := execute(t, app, path, "seal", "--key", "backup", "--alg", alg, "--in", writeSecret(t, "api-token-123"), sealedPath)
			require.NoError(t, err)

			sealed, err := os.ReadFile(sealedPath)
			require.NoError(t, err)
			assert.NotContains(t, string(sealed), "api-token-123")

			out, err := execute(t, app, path, "open", "--key", "backup", "--alg", alg, sealedPath)
			require.NoError(t, err)
			assert.Equal(t, "api-token-123", out)
		})
	}
}

func TestOpen_WrongKey(t *testing.T) {
	app, path := newTestApp(t)
	sealedPath := filepath.Join(t.TempDir(), "token.sealed")

	_, err := execute(t, app, path, "keyring", "store", "--generate", "32", "one")
	require.NoError(t, err)
	_, err = execute(t, app, path, "keyring", "store", "--generate", "32", "two")
	require.NoError(t, err)

	_, err = execute(t, app, path, "seal", "--key", "one", "--in", writeSecret(t, "payload"), sealedPath)
	require.NoError(t, err)

	_, err = execute(t, app, path, "open", "--key", "two", sealedPath)
	assert.Error(t, err)
}

func TestSeal_RequiresKey(t *testing.T) {
	app, path := newTestApp(t)
	_, err := execute(t, app, path, "seal", filepath.Join(t.TempDir(), "out"))
	assert.Error(t, err)
}

func TestDerive_PBKDF2MatchesLibrary(t *testing.T) {
	app, path := newTestApp(t)
	app.ReadPassword = passwords(t, "a long enough password")

	salt := bytes.Repeat([]byte{0x5a}, kdf.SaltSize)

	out, err := execute(t, app, path, "derive", "--kdf", "pbkdf2", "--salt-hex", hex.EncodeToString(salt))
	require.NoError(t, err)

	pw, err := securebuf.FromBytes([]byte("a long enough password"), securebuf.WithLocker(memlock.Noop()))
	require.NoError(t, err)
	defer pw.Destroy()
	key, err := kdf.PBKDF2(pw, salt, kdf.Params{Iterations: 1000, KeyLength: 32}, securebuf.WithLocker(memlock.Noop()))
	require.NoError(t, err)
	defer key.Destroy()

	assert.Contains(t, out, hex.EncodeToString(salt))
	assert.Contains(t, out, fingerprint.Of(key))
	assert.NotContains(t, out, hex.EncodeToString(key.Bytes()))
}

func TestDerive_ContextAndInfoChangeTheKey(t *testing.T) {
	app, path := newTestApp(t)
	saltHex := hex.EncodeToString(bytes.Repeat([]byte{1}, kdf.SaltSize))

	run := func(args ...string) string {
		app.ReadPassword = passwords(t, "a long enough password")
		out, err := execute(t, app, path, append([]string{"derive", "--kdf", "pbkdf2", "--salt-hex", saltHex}, args...)...)
		require.NoError(t, err)
		return out
	}

	plain := run()
	withContext := run("--context", "vault-a")
	withInfo := run("--info", "subkey")

	assert.NotEqual(t, plain, withContext)
	assert.NotEqual(t, plain, withInfo)
	assert.NotEqual(t, withContext, withInfo)
}

func TestDerive_ContextRequiresPBKDF2(t *testing.T) {
	app, path := newTestApp(t)
	app.ReadPassword = passwords(t)

	_, err := execute(t, app, path, "derive", "--kdf", "argon2", "--context", "x")
	assert.Error(t, err)
}

func TestDerive_Argon2AndStore(t *testing.T) {
	app, path := newTestApp(t)
	app.ReadPassword = passwords(t, "a long enough password")

	out, err := execute(t, app, path, "derive", "--store", "derived")
	require.NoError(t, err)
	assert.Contains(t, out, "argon2")
	assert.Contains(t, out, "stored as 'derived'")

	fp, err := execute(t, app, path, "keyring", "fingerprint", "derived")
	require.NoError(t, err)
	assert.Contains(t, out, strings.TrimSpace(fp))
}

func TestDerive_Confirm(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		wantErr error
	}{
		{"match", []string{"a long enough password", "a long enough password"}, nil},
		{"mismatch", []string{"a long enough password", "a different password"}, errPasswordMismatch},
		{"too short", []string{"short"}, keysource.ErrTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, path := newTestApp(t)
			app.ReadPassword = passwords(t, tt.answers...)

			_, err := execute(t, app, path, "derive", "--kdf", "pbkdf2", "--confirm")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGatherLockStats(t *testing.T) {
	app, path := newTestApp(t)
	_, err := execute(t, app, path, "keyring", "store", "--generate", "16", "stats")
	require.NoError(t, err)
	require.NotNil(t, app.Registry)

	stats, err := gatherLockStats(app.Registry)
	require.NoError(t, err)
	assert.Zero(t, stats.LockedBytes)
	assert.Equal(t, stats.Operations["lock ok"], stats.Operations["unlock ok"])
	assert.Positive(t, stats.Operations["lock ok"])
}

func TestExec_InjectsSecret(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	app, path := newTestApp(t)
	_, err := execute(t, app, path, "keyring", "store", "--from", writeSecret(t, "pa55word"), "db")
	require.NoError(t, err)

	out, err := execute(t, app, path, "exec", "--secret", "DB_PASSWORD=db", "--", "sh", "-c", `printf %s "$DB_PASSWORD"`)
	require.NoError(t, err)
	assert.Equal(t, "pa55word", out)
}

func TestExec_InvalidSecretFlag(t *testing.T) {
	app, path := newTestApp(t)
	_, err := execute(t, app, path, "exec", "--secret", "NOEQUALS", "--", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAR=name")
}
