// Package commands implements the securebuf CLI.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carved4/go-securebuf/internal/config"
	"github.com/carved4/go-securebuf/internal/keysource"
	"github.com/carved4/go-securebuf/internal/securebuf"
	"github.com/carved4/go-securebuf/internal/ui"
)

// App carries what every command needs once the global flags are parsed.
type App struct {
	ConfigPath string
	LogLevel   string

	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Options  []securebuf.Option

	// ReadPassword prompts for a password. Init installs a terminal reader
	// unless one is already set.
	ReadPassword func(prompt string) (*securebuf.Buffer, error)
}

// Init loads the config and builds the logger and buffer options. The
// config file must exist only when its path was given explicitly.
func (a *App) Init(errOut io.Writer, configRequired bool) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.LogLevel, err)
	}
	a.Logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.Logger)

	cfg, err := config.Load(a.ConfigPath, configRequired)
	if err != nil {
		return err
	}
	a.Config = cfg

	var reg prometheus.Registerer
	if cfg.Metrics {
		a.Registry = prometheus.NewRegistry()
		reg = a.Registry
	}

	opts, _, err := cfg.Options(a.Logger, reg)
	if err != nil {
		return err
	}
	a.Options = opts

	if a.ReadPassword == nil {
		a.ReadPassword = a.readPasswordFromStdin
	}

	a.Logger.Debug("configuration loaded", "path", a.ConfigPath, "locker", cfg.Locker, "allocator", cfg.Allocator)
	return nil
}

func (a *App) readPasswordFromStdin(prompt string) (*securebuf.Buffer, error) {
	fd := int(os.Stdin.Fd())
	if keysource.IsTerminal(fd) {
		return keysource.ReadPassword(fd, os.Stderr, ui.Prompt(prompt), a.Options...)
	}
	return keysource.ReadFromPath("-", a.Options...)
}

// SecretStore is a place secrets can be kept between runs.
type SecretStore interface {
	Store(name string, secret *securebuf.Buffer) error
	Load(name string, opts ...securebuf.Option) (*securebuf.Buffer, error)
	Delete(name string) error
}

func (a *App) SecretStore(backend string) (SecretStore, error) {
	switch backend {
	case backendOS:
		return keysource.Keyring{Service: a.Config.Keyring.Service}, nil
	case backendKernel:
		return keysource.KernelKeyring{Prefix: a.Config.Keyring.KernelPrefix}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// reportMetrics logs the lock counters collected during the command when
// metrics are enabled.
func (a *App) reportMetrics() {
	if a.Registry == nil {
		return
	}
	stats, err := gatherLockStats(a.Registry)
	if err != nil {
		a.Logger.Warn("could not gather lock metrics", "err", err)
		return
	}
	a.Logger.Info("lock metrics",
		"locked_bytes", stats.LockedBytes,
		"lock_ok", stats.Operations["lock ok"],
		"lock_error", stats.Operations["lock error"],
		"unlock_ok", stats.Operations["unlock ok"],
		"unlock_error", stats.Operations["unlock error"],
	)
}
