package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const (
	backendOS     = "os"
	backendKernel = "kernel"
)

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(p *string, def string, allowed ...string) *choiceValue {
	*p = def
	return &choiceValue{value: p, allowed: allowed}
}

func (c *choiceValue) String() string {
	return *c.value
}

func (c *choiceValue) Set(s string) error {
	if !slices.Contains(c.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(c.allowed, ", "))
	}
	*c.value = s
	return nil
}

func (c *choiceValue) Type() string {
	return "string"
}

func addBackendFlag(fs *pflag.FlagSet, p *string) {
	fs.Var(newChoiceValue(p, backendOS, backendOS, backendKernel), "backend",
		"Secret store: os (desktop keyring) or kernel (linux session keyring)")
}
