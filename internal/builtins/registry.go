package builtins

import (
	"sort"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

var registry = map[string]*object.Builtin{}

func register(name string, fn object.BuiltinFunction) {
	registry[name] = &object.Builtin{Name: name, Fn: fn}
}

// Lookup returns the builtin registered under name, or nil. User-defined
// actions shadow builtins; the evaluator consults its environment first.
func Lookup(name string) *object.Builtin {
	return registry[name]
}

// Names returns every registered builtin name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
