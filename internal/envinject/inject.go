// Package envinject runs a command with secrets added to its environment.
// Secrets stay in locked buffers until the child's environment is built.
package envinject

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/carved4/go-securebuf/internal/securebuf"
)

var ErrNoCommand = errors.New("no command specified")

// Injector owns the buffers added to it and destroys them in Destroy. It
// is safe for concurrent use.
type Injector struct {
	mu      sync.Mutex
	secrets map[string]*securebuf.Buffer
}

func New() *Injector {
	return &Injector{secrets: make(map[string]*securebuf.Buffer)}
}

// Add takes ownership of value. A previous value under the same name is
// destroyed.
func (in *Injector) Add(name string, value *securebuf.Buffer) error {
	if name == "" || strings.ContainsAny(name, "=\x00") {
		value.Destroy()
		return fmt.Errorf("invalid variable name %q", name)
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if old, ok := in.secrets[name]; ok {
		old.Destroy()
	}
	in.secrets[name] = value
	return nil
}

// Names returns the variable names held, sorted.
func (in *Injector) Names() []string {
	in.mu.Lock()
	defer in.mu.Unlock()

	names := make([]string, 0, len(in.secrets))
	for name := range in.secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Env returns base with every held secret the filter allows appended.
// Entries of base that a secret overrides are dropped. The returned
// strings are ordinary heap copies and cannot be wiped.
func (in *Injector) Env(base []string, filter *Filter) []string {
	in.mu.Lock()
	defer in.mu.Unlock()

	env := make([]string, 0, len(base)+len(in.secrets))
	for _, kv := range base {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, overridden := in.secrets[name]; !overridden {
			env = append(env, kv)
		}
	}

	for name, value := range in.secrets {
		if !filter.Allows(name) {
			continue
		}
		env = append(env, name+"="+string(value.Bytes()))
		runtime.KeepAlive(value)
	}
	return env
}

// Run starts args[0] with the injected environment and waits for it.
func (in *Injector) Run(ctx context.Context, args []string, base []string, filter *Filter, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return ErrNoCommand
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = in.Env(base, filter)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// Destroy wipes every held secret.
func (in *Injector) Destroy() {
	in.mu.Lock()
	defer in.mu.Unlock()

	for name, value := range in.secrets {
		value.Destroy()
		delete(in.secrets, name)
	}
}
