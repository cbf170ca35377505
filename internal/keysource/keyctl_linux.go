//go:build linux

package keysource

import (
	"fmt"
	"runtime"

	"github.com/jsipprell/keyctl"

	"github.com/carved4/go-securebuf/internal/securebuf"
)

// KernelKeyring keeps secrets in the calling session's kernel keyring.
// Entries survive the process but not a reboot or logout.
type KernelKeyring struct {
	Prefix string
}

func (k KernelKeyring) Store(name string, secret *securebuf.Buffer) error {
	keyring, err := keyctl.SessionKeyring()
	if err != nil {
		return fmt.Errorf("failed to access kernel keyring: %w", err)
	}

	keyring.SetDefaultTimeout(0)

	_, err = keyring.Add(k.Prefix+name, secret.Bytes())
	runtime.KeepAlive(secret)
	if err != nil {
		return fmt.Errorf("failed to store %s in kernel keyring: %w", name, err)
	}
	return nil
}

// Load searches the session keyring for name and adopts the payload the
// kernel hands back into a locked buffer.
func (k KernelKeyring) Load(name string, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	keyring, err := keyctl.SessionKeyring()
	if err != nil {
		return nil, fmt.Errorf("failed to access kernel keyring: %w", err)
	}

	key, err := keyring.Search(k.Prefix + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}

	data, err := key.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", name, err)
	}
	return securebuf.FromOwned(data, opts...)
}

func (k KernelKeyring) Delete(name string) error {
	keyring, err := keyctl.SessionKeyring()
	if err != nil {
		return fmt.Errorf("failed to access kernel keyring: %w", err)
	}

	if key, err := keyring.Search(k.Prefix + name); err == nil {
		if err := key.Unlink(); err != nil {
			return fmt.Errorf("failed to unlink %s: %w", name, err)
		}
	}
	return nil
}
