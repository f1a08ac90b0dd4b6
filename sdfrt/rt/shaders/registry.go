package shaders

import (
	"fmt"
	"strings"
)

// Registry collects shader functions by name in the order they were first provided.
type Registry struct {
	order   []string
	sources map[string]string
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]string)}
}

// ProvideFunction adds source under name. Providing the same source twice is a
// no-op; a different source under a known name is rejected.
func (r *Registry) ProvideFunction(name, source string) error {
	if prev, ok := r.sources[name]; ok {
		if prev != source {
			return fmt.Errorf("%w: %s", ErrConflictingFunction, name)
		}
		return nil
	}
	r.sources[name] = source
	r.order = append(r.order, name)
	return nil
}

// ProvideFragments resolves names against lib and provides the result.
func (r *Registry) ProvideFragments(lib *Library, names ...string) error {
	frags, err := lib.Resolve(names...)
	if err != nil {
		return err
	}
	for _, f := range frags {
		if err := r.ProvideFunction(f.Name, f.Source); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.order) }

// String concatenates every provided function.
func (r *Registry) String() string {
	var b strings.Builder
	for i, name := range r.order {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimRight(r.sources[name], "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
