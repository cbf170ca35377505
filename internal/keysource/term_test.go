package keysource

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carved4/go-securebuf/internal/securebuf"
)

func TestReadPassword_NotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	fd := int(r.Fd())
	assert.False(t, IsTerminal(fd))

	var prompt bytes.Buffer
	_, err = ReadPassword(fd, &prompt, "password: ", noLock)
	assert.Error(t, err)
	assert.Contains(t, prompt.String(), "password: ")
}

func TestCheckLength(t *testing.T) {
	short, err := securebuf.FromBytes([]byte("short"), noLock)
	require.NoError(t, err)
	defer short.Destroy()
	assert.ErrorIs(t, CheckLength(short, MinPasswordLength), ErrTooShort)

	long, err := securebuf.FromBytes([]byte("long enough password"), noLock)
	require.NoError(t, err)
	defer long.Destroy()
	assert.NoError(t, CheckLength(long, MinPasswordLength))
}
