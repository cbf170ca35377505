//go:build !linux

package keysource

import "github.com/carved4/go-securebuf/internal/securebuf"

// KernelKeyring is only backed by the kernel on linux.
type KernelKeyring struct {
	Prefix string
}

func (KernelKeyring) Store(string, *securebuf.Buffer) error {
	return ErrNoKeyctl
}

func (KernelKeyring) Load(string, ...securebuf.Option) (*securebuf.Buffer, error) {
	return nil, ErrNoKeyctl
}

func (KernelKeyring) Delete(string) error {
	return ErrNoKeyctl
}
