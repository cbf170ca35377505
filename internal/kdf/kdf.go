// Package kdf derives keys from passwords and secrets directly into locked
// buffers.
package kdf

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"

	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
)

var ErrInvalidParams = errors.New("kdf: invalid parameters")

const SaltSize = 16

// Params tunes both password hashes. Iterations applies to PBKDF2; Time,
// MemoryKiB and Threads to Argon2id.
type Params struct {
	Iterations int
	Time       uint32
	MemoryKiB  uint32
	Threads    uint8
	KeyLength  int
}

func DefaultPBKDF2() Params {
	return Params{Iterations: 600000, KeyLength: 32}
}

func DefaultArgon2() Params {
	return Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLength: 32}
}

func NewSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("could not generate salt: %w", err)
	}
	return salt, nil
}

// PBKDF2 derives a key with PBKDF2-HMAC-SHA256.
func PBKDF2(password *securebuf.Buffer, salt []byte, p Params, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	if p.Iterations < 1 || p.KeyLength < 1 {
		return nil, fmt.Errorf("%w: iterations=%d key_length=%d", ErrInvalidParams, p.Iterations, p.KeyLength)
	}
	key := pbkdf2.Key(password.Bytes(), salt, p.Iterations, p.KeyLength, sha256.New)
	runtime.KeepAlive(password)
	return securebuf.FromOwned(key, opts...)
}

// Argon2id derives a key with Argon2id.
func Argon2id(password *securebuf.Buffer, salt []byte, p Params, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	if p.Time < 1 || p.Threads < 1 || p.MemoryKiB < 8*uint32(p.Threads) || p.KeyLength < 1 {
		return nil, fmt.Errorf("%w: time=%d memory=%dKiB threads=%d key_length=%d",
			ErrInvalidParams, p.Time, p.MemoryKiB, p.Threads, p.KeyLength)
	}
	key := argon2.IDKey(password.Bytes(), salt, p.Time, p.MemoryKiB, p.Threads, uint32(p.KeyLength))
	runtime.KeepAlive(password)
	return securebuf.FromOwned(key, opts...)
}

// WithContext derives a key bound to context, so the same password yields
// independent keys for different vaults or purposes.
func WithContext(password *securebuf.Buffer, context string, salt []byte, p Params, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	h := sha256.New()
	h.Write(password.Bytes())
	runtime.KeepAlive(password)
	h.Write([]byte("::securebuf-context::"))
	h.Write([]byte(context))
	contextual := h.Sum(nil)
	defer memlock.Wipe(contextual)

	mixed, err := securebuf.FromBytes(contextual, opts...)
	if err != nil {
		return nil, err
	}
	defer mixed.Destroy()

	return PBKDF2(mixed, salt, p, opts...)
}

// Expand runs HKDF-SHA256 over secret and reads length bytes of output
// straight into a locked buffer.
func Expand(secret *securebuf.Buffer, salt, info []byte, length int, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	if length < 1 || length > 255*sha256.Size {
		return nil, fmt.Errorf("%w: hkdf length %d", ErrInvalidParams, length)
	}

	out, err := securebuf.New(length, opts...)
	if err != nil {
		return nil, err
	}

	r := hkdf.New(sha256.New, secret.Bytes(), salt, info)
	_, err = io.ReadFull(r, out.Bytes())
	runtime.KeepAlive(secret)
	if err != nil {
		out.Destroy()
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}
