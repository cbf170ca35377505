package keysource

import (
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/carved4/go-securebuf/internal/securebuf"
)

// MinPasswordLength is the shortest password CheckLength accepts by default.
const MinPasswordLength = 12

// ReadPassword writes prompt to w and reads one line from the terminal on
// fd without echo. The bytes term returns are adopted, not copied.
func ReadPassword(fd int, w io.Writer, prompt string, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	fmt.Fprint(w, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return securebuf.FromOwned(password, opts...)
}

// CheckLength rejects passwords shorter than min bytes.
func CheckLength(password *securebuf.Buffer, min int) error {
	if password.Len() < min {
		return fmt.Errorf("%w: must be at least %d characters long", ErrTooShort, min)
	}
	return nil
}

// IsTerminal reports whether fd is a terminal ReadPassword can use.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
