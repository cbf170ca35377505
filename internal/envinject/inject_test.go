package envinject

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
)

func secret(t *testing.T, s string) *securebuf.Buffer {
	t.Helper()
	buf, err := securebuf.FromBytes([]byte(s), securebuf.WithLocker(memlock.Noop()))
	require.NoError(t, err)
	return buf
}

func TestFilter(t *testing.T) {
	assert.True(t, NewFilter().Allows("ANYTHING"))
	assert.True(t, (*Filter)(nil).Allows("ANYTHING"))

	f := NewFilter().AllowPrefix("DB_").AllowName("API_KEY")
	assert.True(t, f.Allows("DB_PASSWORD"))
	assert.True(t, f.Allows("API_KEY"))
	assert.False(t, f.Allows("API_KEY_2"))
	assert.False(t, f.Allows("HOME"))
}

func TestEnv(t *testing.T) {
	in := New()
	defer in.Destroy()

	require.NoError(t, in.Add("DB_PASSWORD", secret(t, "s3cret")))
	require.NoError(t, in.Add("API_KEY", secret(t, "abc")))

	base := []string{"HOME=/root", "DB_PASSWORD=stale", "garbage"}

	env := in.Env(base, nil)
	assert.ElementsMatch(t, []string{"HOME=/root", "DB_PASSWORD=s3cret", "API_KEY=abc"}, env)

	env = in.Env(base, NewFilter().AllowPrefix("DB_"))
	assert.ElementsMatch(t, []string{"HOME=/root", "DB_PASSWORD=s3cret"}, env)

	assert.Equal(t, []string{"API_KEY", "DB_PASSWORD"}, in.Names())
}

func TestAdd_ReplacesAndDestroys(t *testing.T) {
	in := New()
	defer in.Destroy()

	first := secret(t, "one")
	require.NoError(t, in.Add("TOKEN", first))
	require.NoError(t, in.Add("TOKEN", secret(t, "two")))

	assert.Zero(t, first.Cap())
	assert.Equal(t, []string{"TOKEN=two"}, in.Env(nil, nil))
}

func TestAdd_InvalidName(t *testing.T) {
	in := New()
	defer in.Destroy()

	buf := secret(t, "x")
	assert.Error(t, in.Add("A=B", buf))
	assert.Zero(t, buf.Cap())
	assert.Empty(t, in.Names())
}

func TestDestroy(t *testing.T) {
	in := New()
	buf := secret(t, "value")
	require.NoError(t, in.Add("X", buf))

	in.Destroy()
	assert.Zero(t, buf.Cap())
	assert.Empty(t, in.Names())
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	in := New()
	defer in.Destroy()
	require.NoError(t, in.Add("INJECTED", secret(t, "hello")))

	var out bytes.Buffer
	err := in.Run(context.Background(), []string{"sh", "-c", "printf %s \"$INJECTED\""}, nil, nil, nil, &out, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.String())
}

func TestRun_NoCommand(t *testing.T) {
	assert.ErrorIs(t, New().Run(context.Background(), nil, nil, nil, nil, nil, nil), ErrNoCommand)
}
