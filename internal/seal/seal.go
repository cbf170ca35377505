// Package seal encrypts locked buffers and decrypts ciphertexts back into
// locked buffers without a plaintext copy on the heap.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/carved4/go-securebuf/internal/securebuf"
)

type Algorithm string

const (
	AESGCM            Algorithm = "aes-gcm"
	XChaCha20Poly1305 Algorithm = "xchacha20-poly1305"
)

var (
	ErrAuthentication   = errors.New("seal: message authentication failed")
	ErrShortCiphertext  = errors.New("seal: ciphertext too short")
	ErrUnknownAlgorithm = errors.New("seal: unknown algorithm")
)

func newAEAD(alg Algorithm, key []byte) (cipher.AEAD, error) {
	switch alg {
	case AESGCM:
		c, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("could not make cipher: %w", err)
		}
		gcm, err := cipher.NewGCM(c)
		if err != nil {
			return nil, fmt.Errorf("could not make gcm: %w", err)
		}
		return gcm, nil
	case XChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("could not make xchacha20-poly1305: %w", err)
		}
		return aead, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// Seal encrypts the visible bytes of plaintext under key and returns
// nonce||ciphertext. The result is not secret.
func Seal(alg Algorithm, key, plaintext *securebuf.Buffer, aad []byte) ([]byte, error) {
	aead, err := newAEAD(alg, key.Bytes())
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+plaintext.Len()+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext.Bytes(), aad)
	runtime.KeepAlive(key)
	runtime.KeepAlive(plaintext)
	return sealed, nil
}

// Open authenticates and decrypts sealed into a locked buffer sized to the
// plaintext. Decryption writes into the locked region directly.
func Open(alg Algorithm, key *securebuf.Buffer, sealed, aad []byte, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	aead, err := newAEAD(alg, key.Bytes())
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(sealed) < nonceSize+aead.Overhead() {
		return nil, ErrShortCiphertext
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	out, err := securebuf.New(len(ciphertext)-aead.Overhead(), opts...)
	if err != nil {
		return nil, err
	}

	_, err = aead.Open(out.Bytes()[:0], nonce, ciphertext, aad)
	runtime.KeepAlive(key)
	if err != nil {
		out.Destroy()
		return nil, ErrAuthentication
	}
	return out, nil
}
