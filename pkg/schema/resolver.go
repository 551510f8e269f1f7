package schema

import (
	"context"
	"fmt"
	"slices"
)

// Resolver finds tables that directly reference a parent entity.
// Multi-hop closures are composed by the caller.
type Resolver struct {
	in Introspector
}

// NewResolver creates a Resolver on top of an Introspector.
func NewResolver(in Introspector) *Resolver {
	return &Resolver{in: in}
}

// Introspector returns the underlying graph source.
func (r *Resolver) Introspector() Introspector {
	return r.in
}

// ReferencingTables returns references of all tables that have a foreign
// key into parent(parentKey). The parent and excluded tables are never
// part of the result.
func (r *Resolver) ReferencingTables(
	ctx context.Context,
	parent, parentKey string,
	excluded ...string,
) (References, error) {
	tables, err := r.in.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(tables))
	for _, v := range tables {
		if v == parent || slices.Contains(excluded, v) {
			continue
		}
		candidates = append(candidates, v)
	}

	res := make(References)
	if len(candidates) == 0 {
		return res, nil
	}

	xrefs, err := r.in.CrossReferences(ctx, parent, candidates)
	if err != nil {
		return nil, fmt.Errorf("references into %s(%s): %w",
			parent, parentKey, err)
	}

	for table, refs := range xrefs {
		if table == parent || slices.Contains(excluded, table) ||
			!slices.Contains(candidates, table) {
			continue
		}
		for _, v := range refs {
			if v.ParentColumn != parentKey {
				continue
			}
			res.Add(TableReference{Table: table, Column: v.ChildColumn})
		}
	}
	return res, nil
}

// SelfReferences returns sorted columns of table that reference the
// table's own key column. ReferencingTables never reports them because
// the parent is always excluded.
func (r *Resolver) SelfReferences(
	ctx context.Context,
	table, key string,
) ([]string, error) {
	xrefs, err := r.in.CrossReferences(ctx, table, []string{table})
	if err != nil {
		return nil, fmt.Errorf("self references of %s(%s): %w",
			table, key, err)
	}

	var res []string
	for _, v := range xrefs[table] {
		if v.ParentColumn == key && !slices.Contains(res, v.ChildColumn) {
			res = append(res, v.ChildColumn)
		}
	}
	slices.Sort(res)
	return res, nil
}
