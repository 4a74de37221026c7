// Package deps accumulates the extension names a scan depends on.
package deps

import "sort"

// Set is a set of extension names. The zero value is not usable; use NewSet.
type Set map[string]struct{}

func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s.Add(name)
	}
	return s
}

func (s Set) Add(name string) {
	s[name] = struct{}{}
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Merge adds every name in other to s.
func (s Set) Merge(other Set) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Sorted returns the names in case-insensitive natural order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return NaturalLess(names[i], names[j])
	})
	return names
}
