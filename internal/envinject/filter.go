package envinject

import (
	"slices"
	"strings"
)

// Filter selects which variables are passed to the child. An empty filter
// allows everything.
type Filter struct {
	prefixes []string
	names    []string
}

func NewFilter() *Filter {
	return &Filter{}
}

func (f *Filter) AllowPrefix(prefixes ...string) *Filter {
	f.prefixes = append(f.prefixes, prefixes...)
	return f
}

func (f *Filter) AllowName(names ...string) *Filter {
	f.names = append(f.names, names...)
	return f
}

func (f *Filter) Allows(name string) bool {
	if f == nil || (len(f.prefixes) == 0 && len(f.names) == 0) {
		return true
	}
	if slices.Contains(f.names, name) {
		return true
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
