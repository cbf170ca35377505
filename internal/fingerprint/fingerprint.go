// Package fingerprint derives short, printable identifiers for secrets so
// operators can compare two secrets without seeing either.
package fingerprint

import (
	"encoding/hex"
	"runtime"

	"github.com/zeebo/blake3"

	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
)

const context = "github.com/carved4/go-securebuf 2026 fingerprint v1"

// Size is the number of hash bytes kept in a fingerprint.
const Size = 8

// Of returns the hex encoded BLAKE3 derive-key hash of the visible bytes,
// truncated to Size bytes.
func Of(buf *securebuf.Buffer) string {
	h := blake3.NewDeriveKey(context)
	h.Write(buf.Bytes())
	runtime.KeepAlive(buf)
	sum := h.Sum(nil)
	defer memlock.Wipe(sum)

	return hex.EncodeToString(sum[:Size])
}
