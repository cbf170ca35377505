package memlock

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemLocker_EmptyIsNoop(t *testing.T) {
	locker := System()
	assert.NoError(t, locker.Lock(nil))
	assert.NoError(t, locker.Unlock(nil))
	assert.NoError(t, locker.Lock([]byte{}))
	assert.NoError(t, locker.Unlock([]byte{}))
}

func TestSystemLocker_LockUnlock(t *testing.T) {
	locker := System()
	data := make([]byte, 4096)

	err := locker.Lock(data)
	if errors.Is(err, ErrUnsupported) {
		t.Skipf("memory locking unsupported on %s", runtime.GOOS)
	}
	if err != nil {
		// RLIMIT_MEMLOCK can be zero in constrained sandboxes.
		t.Skipf("mlock unavailable: %v", err)
	}
	require.NoError(t, locker.Unlock(data))
}

func TestNoopLocker(t *testing.T) {
	locker := Noop()
	data := []byte("not pinned")
	assert.NoError(t, locker.Lock(data))
	assert.NoError(t, locker.Unlock(data))
	assert.Equal(t, "not pinned", string(data))
}

func TestRlimit_Allows(t *testing.T) {
	tests := []struct {
		name  string
		limit Rlimit
		inUse uint64
		n     uint64
		want  bool
	}{
		{name: "unlimited", limit: Rlimit{Current: ^uint64(0), Max: ^uint64(0)}, inUse: 1 << 40, n: 1 << 40, want: true},
		{name: "fits", limit: Rlimit{Current: 65536}, inUse: 4096, n: 4096, want: true},
		{name: "exactly full", limit: Rlimit{Current: 8192}, inUse: 4096, n: 4096, want: true},
		{name: "over", limit: Rlimit{Current: 8192}, inUse: 4096, n: 4097, want: false},
		{name: "already over", limit: Rlimit{Current: 4096}, inUse: 8192, n: 1, want: false},
		{name: "zero limit", limit: Rlimit{}, inUse: 0, n: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.limit.Allows(tt.inUse, tt.n))
		})
	}
}

func TestLimit(t *testing.T) {
	rl, err := Limit()
	if errors.Is(err, ErrUnsupported) {
		t.Skipf("rlimit unsupported on %s", runtime.GOOS)
	}
	require.NoError(t, err)
	if !rl.Unlimited() {
		assert.LessOrEqual(t, rl.Current, rl.Max)
	}
}

func TestIsElevated(t *testing.T) {
	_, err := IsElevated()
	assert.NoError(t, err)
}
