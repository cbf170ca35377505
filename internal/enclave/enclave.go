// Package enclave parks secrets that are held for a long time but read
// rarely. A parked secret is encrypted at rest by memguard and only exists
// as plaintext while it is unparked into a locked buffer.
//
// Process exit should call memguard.Purge to destroy the session key.
package enclave

import (
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/carved4/go-securebuf/internal/securebuf"
)

// Parked holds an encrypted copy of a secret.
type Parked struct {
	enclave *memguard.Enclave
}

// Park encrypts the visible bytes of buf into an enclave and destroys buf.
// memguard wipes the source bytes as it copies them.
func Park(buf *securebuf.Buffer) *Parked {
	defer buf.Destroy()

	if buf.IsEmpty() {
		return &Parked{}
	}
	return &Parked{enclave: memguard.NewEnclave(buf.Bytes())}
}

// Size is the length of the parked plaintext.
func (p *Parked) Size() int {
	if p.enclave == nil {
		return 0
	}
	return p.enclave.Size()
}

// Unpark decrypts the secret into a new locked buffer. The enclave stays
// valid and can be unparked again.
func (p *Parked) Unpark(opts ...securebuf.Option) (*securebuf.Buffer, error) {
	if p.enclave == nil {
		return securebuf.New(0, opts...)
	}

	locked, err := p.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open enclave: %w", err)
	}
	defer locked.Destroy()

	return securebuf.FromBytes(locked.Bytes(), opts...)
}
