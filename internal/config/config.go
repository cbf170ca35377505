// Package config loads the CLI's YAML configuration and turns it into
// securebuf options.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/carved4/go-securebuf/internal/kdf"
	"github.com/carved4/go-securebuf/internal/keysource"
	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
)

const (
	LockerSystem = "system"
	LockerNone   = "none"

	AllocatorHeap = "heap"
	AllocatorMmap = "mmap"
)

// Config is the securebuf.yaml structure.
type Config struct {
	Locker    string        `yaml:"locker"`
	Allocator string        `yaml:"allocator"`
	Metrics   bool          `yaml:"metrics"`
	Keyring   KeyringConfig `yaml:"keyring"`
	KDF       KDFConfig     `yaml:"kdf"`
}

type KeyringConfig struct {
	Service      string `yaml:"service"`
	KernelPrefix string `yaml:"kernel_prefix"`
}

type KDFConfig struct {
	PBKDF2Iterations int    `yaml:"pbkdf2_iterations"`
	Argon2Time       uint32 `yaml:"argon2_time"`
	Argon2MemoryKiB  uint32 `yaml:"argon2_memory_kib"`
	Argon2Threads    uint8  `yaml:"argon2_threads"`
	KeyLength        int    `yaml:"key_length"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	pb := kdf.DefaultPBKDF2()
	ar := kdf.DefaultArgon2()
	return &Config{
		Locker:    LockerSystem,
		Allocator: AllocatorHeap,
		Keyring: KeyringConfig{
			Service:      keysource.DefaultService(),
			KernelPrefix: "securebuf:",
		},
		KDF: KDFConfig{
			PBKDF2Iterations: pb.Iterations,
			Argon2Time:       ar.Time,
			Argon2MemoryKiB:  ar.MemoryKiB,
			Argon2Threads:    ar.Threads,
			KeyLength:        pb.KeyLength,
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/securebuf/config.yaml or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "securebuf.yaml"
	}
	return filepath.Join(dir, "securebuf", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error when
// required is false.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Locker {
	case LockerSystem, LockerNone:
	default:
		return fmt.Errorf("locker: unknown value %q (want %q or %q)", c.Locker, LockerSystem, LockerNone)
	}
	switch c.Allocator {
	case AllocatorHeap, AllocatorMmap:
	default:
		return fmt.Errorf("allocator: unknown value %q (want %q or %q)", c.Allocator, AllocatorHeap, AllocatorMmap)
	}
	if c.Keyring.Service == "" {
		return errors.New("keyring.service: must not be empty")
	}
	if c.KDF.PBKDF2Iterations < 1 {
		return fmt.Errorf("kdf.pbkdf2_iterations: must be positive, got %d", c.KDF.PBKDF2Iterations)
	}
	if c.KDF.Argon2Time < 1 {
		return fmt.Errorf("kdf.argon2_time: must be positive, got %d", c.KDF.Argon2Time)
	}
	if c.KDF.Argon2Threads < 1 {
		return fmt.Errorf("kdf.argon2_threads: must be positive, got %d", c.KDF.Argon2Threads)
	}
	if c.KDF.Argon2MemoryKiB < 8*uint32(c.KDF.Argon2Threads) {
		return fmt.Errorf("kdf.argon2_memory_kib: must be at least %d, got %d", 8*uint32(c.KDF.Argon2Threads), c.KDF.Argon2MemoryKiB)
	}
	if c.KDF.KeyLength < 16 || c.KDF.KeyLength > 64 {
		return fmt.Errorf("kdf.key_length: must be between 16 and 64, got %d", c.KDF.KeyLength)
	}
	return nil
}

func (c *Config) PBKDF2Params() kdf.Params {
	return kdf.Params{Iterations: c.KDF.PBKDF2Iterations, KeyLength: c.KDF.KeyLength}
}

func (c *Config) Argon2Params() kdf.Params {
	return kdf.Params{
		Time:      c.KDF.Argon2Time,
		MemoryKiB: c.KDF.Argon2MemoryKiB,
		Threads:   c.KDF.Argon2Threads,
		KeyLength: c.KDF.KeyLength,
	}
}

// Options turns the config into buffer options. When reg is non-nil the
// locker is wrapped in a memlock.Metered registered there, which is also
// returned so callers can read it back.
func (c *Config) Options(logger *slog.Logger, reg prometheus.Registerer) ([]securebuf.Option, *memlock.Metered, error) {
	var locker memlock.Locker = memlock.System()
	if c.Locker == LockerNone {
		locker = memlock.Noop()
	}

	var metered *memlock.Metered
	if reg != nil {
		m, err := memlock.NewMetered(locker, reg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to register lock metrics: %w", err)
		}
		metered = m
		locker = m
	}

	alloc := securebuf.Heap()
	if c.Allocator == AllocatorMmap {
		alloc = securebuf.Mmap()
	}

	opts := []securebuf.Option{
		securebuf.WithLocker(locker),
		securebuf.WithAllocator(alloc),
	}
	if logger != nil {
		opts = append(opts, securebuf.WithLogger(logger))
	}
	return opts, metered, nil
}
