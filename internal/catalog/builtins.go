package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPHPVersion is the runtime assumed when none is configured.
var DefaultPHPVersion = Version{Major: 8, Minor: 3}

// Version is a PHP major.minor release.
type Version struct {
	Major int
	Minor int
}

// ParseVersion accepts "8", "8.2" or "8.2.10"; the patch level is ignored.
func ParseVersion(value string) (Version, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Version{}, fmt.Errorf("empty version")
	}
	parts := strings.Split(value, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", value)
	}
	numbers := make([]int, 0, 2)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", value)
		}
		if i < 2 {
			numbers = append(numbers, n)
		}
	}
	v := Version{Major: numbers[0]}
	if len(numbers) > 1 {
		v.Minor = numbers[1]
	}
	return v, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v is the same release as other or newer.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

// BuiltinTable is the set of extensions always present in a runtime.
type BuiltinTable map[string]struct{}

// NewBuiltinTable builds a table from explicit names.
func NewBuiltinTable(names ...string) BuiltinTable {
	table := make(BuiltinTable, len(names))
	for _, name := range names {
		table[name] = struct{}{}
	}
	return table
}

// Has reports whether name is always present.
func (t BuiltinTable) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Builtins returns the extensions that are always present in a runtime of
// version v. Entries introduced after v are left out.
func (c *Catalog) Builtins(v Version) BuiltinTable {
	table := make(BuiltinTable, len(c.builtins))
	for name, since := range c.builtins {
		if v.AtLeast(since) {
			table[name] = struct{}{}
		}
	}
	return table
}
