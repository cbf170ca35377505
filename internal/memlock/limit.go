package memlock

// Rlimit is the soft and hard cap on locked memory for this process, in
// bytes. Unlimited is reported as ^uint64(0).
type Rlimit struct {
	Current uint64
	Max     uint64
}

// Unlimited reports whether the soft limit places no cap on locked memory.
func (r Rlimit) Unlimited() bool {
	return r.Current == ^uint64(0)
}

// Allows reports whether n more bytes fit under the soft limit given that
// inUse bytes are already locked.
func (r Rlimit) Allows(inUse, n uint64) bool {
	if r.Unlimited() {
		return true
	}
	return inUse <= r.Current && n <= r.Current-inUse
}
