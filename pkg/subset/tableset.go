// Package subset holds the pure building blocks of a subset extraction:
// the set of tables still waiting for a generic copy, the strategy table
// that names special cases, row filters, copy tasks, the SQL statements
// derived from them, paging and run phases.
//
// Nothing here touches a database. The impure side lives in
// internal/iocopy and internal/ioextract.
package subset

import (
	"slices"
)

// TableSet is an immutable, sorted set of table names that still require
// a generic copy. Phases take ownership of tables by claiming them, which
// returns a smaller TableSet instead of mutating a shared one.
type TableSet struct {
	names []string
}

// NewTableSet creates a TableSet from all tables minus the removed ones.
func NewTableSet(all []string, removed ...string) TableSet {
	names := make([]string, 0, len(all))
	for _, v := range all {
		if v == "" || slices.Contains(removed, v) {
			continue
		}
		names = append(names, v)
	}
	slices.Sort(names)
	return TableSet{names: slices.Compact(names)}
}

// Claim hands the given tables over to the caller. It returns the names
// that were present, in the order they were asked for, and a TableSet
// without them. Names that are absent are ignored.
func (ts TableSet) Claim(names ...string) ([]string, TableSet) {
	var claimed []string
	for _, v := range names {
		if ts.Has(v) && !slices.Contains(claimed, v) {
			claimed = append(claimed, v)
		}
	}
	if len(claimed) == 0 {
		return nil, ts
	}

	rest := make([]string, 0, len(ts.names)-len(claimed))
	for _, v := range ts.names {
		if !slices.Contains(claimed, v) {
			rest = append(rest, v)
		}
	}
	return claimed, TableSet{names: rest}
}

// ClaimAll hands over every remaining table and returns an empty set.
func (ts TableSet) ClaimAll() ([]string, TableSet) {
	return ts.Names(), TableSet{}
}

// Has reports whether the table is still unclaimed.
func (ts TableSet) Has(name string) bool {
	_, ok := slices.BinarySearch(ts.names, name)
	return ok
}

// Names returns a copy of the remaining table names in sorted order.
func (ts TableSet) Names() []string {
	return slices.Clone(ts.names)
}

// Len returns the number of remaining tables.
func (ts TableSet) Len() int {
	return len(ts.names)
}
