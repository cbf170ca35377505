package keysource

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
)

// Keyring stores secrets hex encoded in the desktop keyring (Secret
// Service, macOS Keychain, Windows Credential Manager).
type Keyring struct {
	Service string
}

// DefaultService is the keyring service name, suffixed with the invoking
// user when running under sudo on linux so each user keeps their own entry.
func DefaultService() string {
	service := "securebuf"

	if runtime.GOOS == "linux" {
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			service = "securebuf-" + sudoUser
		}
	}

	return service
}

// Store saves the visible bytes of secret under user. go-keyring only
// takes strings, so one unwipeable heap copy of the encoding is made.
func (k Keyring) Store(user string, secret *securebuf.Buffer) error {
	encoded := hex.EncodeToString(secret.Bytes())
	runtime.KeepAlive(secret)
	if err := keyring.Set(k.Service, user, encoded); err != nil {
		slog.Debug("failed to store secret in keyring", "service", k.Service, "user", user)
		return formatKeyringError(err)
	}
	return nil
}

// Load fetches user's secret and decodes it straight into a locked buffer.
func (k Keyring) Load(user string, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	encoded, err := keyring.Get(k.Service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, k.Service, user)
		}
		return nil, formatKeyringError(err)
	}

	if len(encoded)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length encoding", ErrMalformed)
	}

	raw := []byte(encoded)
	defer memlock.Wipe(raw)

	buf, err := securebuf.New(len(raw)/2, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := hex.Decode(buf.Bytes(), raw); err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return buf, nil
}

// Delete removes user's secret. A missing entry is not an error.
func (k Keyring) Delete(user string) error {
	if err := keyring.Delete(k.Service, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return formatKeyringError(err)
	}
	return nil
}

func formatKeyringError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	if runtime.GOOS == "linux" && strings.Contains(errMsg, "failed to unlock correct collection") {
		return fmt.Errorf("keyring error: %w\n\nlinux troubleshooting:\n  1. ensure you're logged into a desktop session (gnome/kde/xfce)\n  2. install gnome-keyring: sudo apt install gnome-keyring\n  3. unlock your keyring: run 'seahorse' and create/unlock the default keyring\n  4. if using ssh/headless, use the kernel keyring instead", err)
	}

	return fmt.Errorf("keyring error: %w", err)
}
