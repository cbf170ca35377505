// Package keysource loads key material into locked buffers: from a
// terminal prompt, a file or stdin, the desktop keyring, or the Linux
// kernel session keyring.
//
// Each loader hands bytes to securebuf as early as it can and wipes the
// intermediates it owns. Strings returned by the keyring APIs cannot be
// wiped; those copies live until the collector reclaims them.
package keysource

import "errors"

var (
	ErrNotFound  = errors.New("keysource: secret not found")
	ErrEmpty     = errors.New("keysource: secret is empty")
	ErrTooShort  = errors.New("keysource: password too short")
	ErrMalformed = errors.New("keysource: stored secret is malformed")
	ErrNoKeyctl  = errors.New("keysource: kernel keyring not supported on this platform")
)
