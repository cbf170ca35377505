//go:build !(linux || darwin)

package memlock

// Limit is not available here; windows bounds locked pages by the working
// set size instead of an rlimit.
func Limit() (Rlimit, error) {
	return Rlimit{}, ErrUnsupported
}
