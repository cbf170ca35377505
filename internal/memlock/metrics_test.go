package memlock

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLocker struct {
	lockErr   error
	unlockErr error
}

func (f failingLocker) Lock([]byte) error   { return f.lockErr }
func (f failingLocker) Unlock([]byte) error { return f.unlockErr }

func TestMetered_TracksLockedBytes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetered(Noop(), reg)
	require.NoError(t, err)

	a := make([]byte, 32)
	b := make([]byte, 16)
	require.NoError(t, m.Lock(a))
	require.NoError(t, m.Lock(b))
	assert.Equal(t, float64(48), testutil.ToFloat64(m.lockedSize))

	require.NoError(t, m.Unlock(a))
	assert.Equal(t, float64(16), testutil.ToFloat64(m.lockedSize))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.operations.WithLabelValues("lock", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("unlock", "ok")))
}

func TestMetered_Failures(t *testing.T) {
	reg := prometheus.NewRegistry()
	lockErr := errors.New("cannot allocate memory")
	m, err := NewMetered(failingLocker{lockErr: lockErr, unlockErr: lockErr}, reg)
	require.NoError(t, err)

	data := make([]byte, 8)
	assert.ErrorIs(t, m.Lock(data), lockErr)
	assert.ErrorIs(t, m.Unlock(data), lockErr)

	assert.Zero(t, testutil.ToFloat64(m.lockedSize))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("lock", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("unlock", "error")))
}

func TestMetered_ReRegisterSharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetered(Noop(), reg)
	require.NoError(t, err)
	second, err := NewMetered(Noop(), reg)
	require.NoError(t, err)

	require.NoError(t, first.Lock(make([]byte, 10)))
	require.NoError(t, second.Lock(make([]byte, 5)))
	assert.Equal(t, float64(15), testutil.ToFloat64(second.lockedSize))
}
