package keysource

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
)

// MaxStdinLine is the longest secret ReadFromPath accepts on stdin.
const MaxStdinLine = 64 << 10

var stdin io.Reader = os.Stdin

// ReadFromPath reads a secret from a file, or the first line of stdin if
// path is "-". Leading and trailing whitespace is dropped; the raw bytes
// read are wiped once the trimmed secret is in a locked buffer.
func ReadFromPath(path string, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	if path == "-" {
		return readFirstLine(stdin, make([]byte, MaxStdinLine), opts...)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer memlock.Wipe(data)

	return trimmed(data, path, opts...)
}

// readFirstLine scans the first line of r using scratch as the scanner's
// only buffer and wipes all of scratch before returning, including any
// bytes read past the first line. Lines longer than scratch are rejected.
func readFirstLine(r io.Reader, scratch []byte, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	defer memlock.Wipe(scratch)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(scratch, len(scratch))
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return nil, fmt.Errorf("%w: stdin", ErrEmpty)
	}

	return trimmed(scanner.Bytes(), "stdin", opts...)
}

func trimmed(data []byte, source string, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	secret := bytes.TrimSpace(data)
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, source)
	}
	return securebuf.FromBytes(secret, opts...)
}
