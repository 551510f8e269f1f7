// Package schema describes the foreign key graph of the source database.
//
// The graph is never hardcoded. An Introspector answers "which tables
// reference X" either from the live catalog or from a declared graph,
// and the Resolver builds referential closures on top of it.
package schema

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// TableReference denotes that Table has a Column that references the key
// column of some parent table.
type TableReference struct {
	Table  string
	Column string
}

// Compare orders references by table, then by column.
func (r TableReference) Compare(other TableReference) int {
	if c := cmp.Compare(r.Table, other.Table); c != 0 {
		return c
	}
	return cmp.Compare(r.Column, other.Column)
}

func (r TableReference) String() string {
	return r.Table + "." + r.Column
}

// References is a set of TableReference values.
type References map[TableReference]struct{}

// NewReferences creates a set from the given references.
func NewReferences(refs ...TableReference) References {
	res := make(References, len(refs))
	for _, v := range refs {
		res.Add(v)
	}
	return res
}

// Add inserts a reference. Adding an equal value twice keeps one copy.
func (rs References) Add(r TableReference) {
	rs[r] = struct{}{}
}

// Has reports whether the set contains the reference.
func (rs References) Has(r TableReference) bool {
	_, ok := rs[r]
	return ok
}

// HasTable reports whether any reference belongs to the table.
func (rs References) HasTable(table string) bool {
	for r := range rs {
		if r.Table == table {
			return true
		}
	}
	return false
}

// Sorted returns references ordered by table and column.
func (rs References) Sorted() []TableReference {
	res := slices.Collect(maps.Keys(rs))
	slices.SortFunc(res, TableReference.Compare)
	return res
}

// Tables returns distinct sorted table names of the set.
func (rs References) Tables() []string {
	seen := make(map[string]struct{}, len(rs))
	for r := range rs {
		seen[r.Table] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// ByTable groups sorted column names by their table.
func (rs References) ByTable() map[string][]string {
	res := make(map[string][]string)
	for _, r := range rs.Sorted() {
		res[r.Table] = append(res[r.Table], r.Column)
	}
	return res
}

// Without returns a new set without references of the given tables.
func (rs References) Without(tables ...string) References {
	res := make(References, len(rs))
	for r := range rs {
		if slices.Contains(tables, r.Table) {
			continue
		}
		res.Add(r)
	}
	return res
}

// Only returns a new set with references of the given table.
func (rs References) Only(table string) References {
	res := make(References)
	for r := range rs {
		if r.Table == table {
			res.Add(r)
		}
	}
	return res
}

func (rs References) String() string {
	sorted := rs.Sorted()
	names := make([]string, len(sorted))
	for i := range sorted {
		names[i] = sorted[i].String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
