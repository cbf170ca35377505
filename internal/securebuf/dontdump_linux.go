//go:build linux

package securebuf

import "golang.org/x/sys/unix"

func excludeFromCoreDump(b []byte) error {
	return unix.Madvise(b, unix.MADV_DONTDUMP)
}
