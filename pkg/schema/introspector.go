package schema

import (
	"context"
)

// CrossReference is one foreign key edge from a child table column to a
// parent table column.
type CrossReference struct {
	ChildColumn  string
	ParentColumn string
}

// Introspector provides the foreign key graph of the source schema.
// The schema does not change during a run, so implementations may cache
// results.
type Introspector interface {
	// ListTables returns the names of all tables of the source schema in
	// a stable order.
	ListTables(ctx context.Context) ([]string, error)

	// CrossReferences returns, for each candidate table, the columns that
	// reference the parent table. Empty candidates means all tables.
	// Candidates without foreign keys into parent have no entry.
	CrossReferences(
		ctx context.Context,
		parent string,
		candidates []string,
	) (map[string][]CrossReference, error)
}
