// Package shaders holds the HLSL fragments behind the volumetric nodes and
// assembles them, deduplicated and dependency first, into shader source.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"
)

//go:embed hlsl/*.hlsl
var fragmentFS embed.FS

var (
	ErrUnknownFragment     = errors.New("unknown shader fragment")
	ErrDependencyCycle     = errors.New("shader fragment dependency cycle")
	ErrConflictingFunction = errors.New("conflicting shader function")
)

// dependencies lists the fragments each fragment calls.
var dependencies = map[string][]string{
	"random":        nil,
	"random_vector": nil,
	"interpolate":   nil,
	"lambert":       nil,

	"value_noise_3D": {"random", "interpolate"},
	"voronoi_3D":     {"random_vector"},

	"box_distance": nil,
	"box_normal":   {"box_distance"},
	"box_render":   {"box_normal", "lambert"},
	"box_raymarch": {"box_distance", "box_render"},

	"sphere_distance": nil,
	"sphere_normal":   {"sphere_distance"},
	"sphere_render":   {"sphere_normal", "lambert"},
	"sphere_raymarch": {"sphere_distance", "sphere_render"},

	"noise_distance":       {"value_noise_3D"},
	"noise_normal":         {"noise_distance"},
	"noise_render":         {"noise_normal", "lambert"},
	"noise_raymarch":       {"noise_distance", "noise_render"},
	"noise_raymarch_unlit": {"noise_distance"},

	"voronoi_distance": {"voronoi_3D"},
	"voronoi_normal":   {"voronoi_distance"},
	"voronoi_render":   {"voronoi_normal", "lambert"},
	"voronoi_raymarch": {"voronoi_distance", "voronoi_render"},
}

// Fragment is one named HLSL function and the fragments it calls.
type Fragment struct {
	Name   string
	Source string
	Deps   []string
}

type Library struct {
	fragments map[string]Fragment
}

// NewLibrary loads every *.hlsl file under dir in fsys. The file name without
// extension is the fragment name; deps maps names to their direct dependencies.
func NewLibrary(fsys fs.FS, dir string, deps map[string][]string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read fragment dir %s: %w", dir, err)
	}
	lib := &Library{fragments: make(map[string]Fragment, len(entries))}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".hlsl" {
			continue
		}
		src, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read fragment %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".hlsl")
		lib.fragments[name] = Fragment{Name: name, Source: string(src), Deps: deps[name]}
	}
	for name, ds := range deps {
		for _, d := range ds {
			if _, ok := lib.fragments[d]; !ok {
				return nil, fmt.Errorf("fragment %s depends on %s: %w", name, d, ErrUnknownFragment)
			}
		}
	}
	return lib, nil
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default returns the library built from the embedded fragments.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = NewLibrary(fragmentFS, "hlsl", dependencies)
	})
	return defaultLib, defaultErr
}

func (l *Library) Fragment(name string) (Fragment, bool) {
	f, ok := l.fragments[name]
	return f, ok
}

// Names returns every fragment name in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.fragments))
	for n := range l.fragments {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named fragments and everything they depend on, each once,
// with every fragment placed after its dependencies. The order is stable for a
// given argument list.
func (l *Library) Resolve(names ...string) ([]Fragment, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(l.fragments))
	var order []Fragment

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s -> %s", ErrDependencyCycle, strings.Join(chain, " -> "), name)
		}
		f, ok := l.fragments[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFragment, name)
		}
		state[name] = visiting
		next := append(slices.Clone(chain), name)
		for _, d := range f.Deps {
			if err := visit(d, next); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, f)
		return nil
	}

	for _, n := range names {
		if err := visit(n, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
