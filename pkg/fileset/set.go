package fileset

import (
	"path/filepath"
	"sort"
	"strings"
)

// Set is an unordered collection of absolute paths without duplicates.
type Set map[string]struct{}

// New returns a set holding paths.
func New(paths ...string) Set {
	s := make(Set, len(paths))
	s.Add(paths...)
	return s
}

// Add inserts paths into the set.
func (s Set) Add(paths ...string) {
	for _, p := range paths {
		s[p] = struct{}{}
	}
}

// Has reports whether p is in the set.
func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of paths in the set.
func (s Set) Len() int {
	return len(s)
}

// Merge adds every path of other to s in place.
func (s Set) Merge(other Set) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Union returns a new set holding the paths of s and all others.
func Union(sets ...Set) Set {
	out := New()
	for _, s := range sets {
		out.Merge(s)
	}
	return out
}

// Difference returns the paths of s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set, len(s))
	for p := range s {
		if !other.Has(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Filter returns the paths of s for which keep reports true.
func (s Set) Filter(keep func(path string) bool) Set {
	out := New()
	for p := range s {
		if keep(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Within returns the paths of s located under dir at any depth.
func (s Set) Within(dir string) Set {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	return s.Filter(func(p string) bool {
		return strings.HasPrefix(p, prefix)
	})
}

// Sorted returns the paths in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Relative returns the sorted paths of s relative to base. Paths outside
// base are returned unchanged.
func (s Set) Relative(base string) []string {
	sorted := s.Sorted()
	for i, p := range sorted {
		if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
			sorted[i] = rel
		}
	}
	return sorted
}
