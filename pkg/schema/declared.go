package schema

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// ForeignKey is a declared foreign key edge.
type ForeignKey struct {
	Table            string `yaml:"table"`
	Column           string `yaml:"column"`
	References       string `yaml:"references"`
	ReferencedColumn string `yaml:"referenced_column"`
}

// Declared is a static foreign key graph. It is used instead of live
// introspection when a deployment wants to pin the graph, and as an
// in-memory graph in tests.
type Declared struct {
	// Tables lists all tables of the schema. Tables that only appear in
	// ForeignKeys are added automatically.
	Tables      []string     `yaml:"tables"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys"`
}

// ListTables returns all declared tables sorted by name.
func (d *Declared) ListTables(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, v := range d.Tables {
		seen[v] = struct{}{}
	}
	for _, v := range d.ForeignKeys {
		seen[v.Table] = struct{}{}
		seen[v.References] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen)), nil
}

// CrossReferences returns declared edges into parent from candidates.
func (d *Declared) CrossReferences(
	_ context.Context,
	parent string,
	candidates []string,
) (map[string][]CrossReference, error) {
	res := make(map[string][]CrossReference)
	for _, v := range d.ForeignKeys {
		if v.References != parent {
			continue
		}
		if len(candidates) > 0 && !slices.Contains(candidates, v.Table) {
			continue
		}
		res[v.Table] = append(res[v.Table], CrossReference{
			ChildColumn:  v.Column,
			ParentColumn: v.ReferencedColumn,
		})
	}
	return res, nil
}

// Validate checks that every foreign key is complete and, when Tables is
// given, refers to known tables only.
func (d *Declared) Validate() error {
	known := make(map[string]struct{}, len(d.Tables))
	for _, v := range d.Tables {
		known[v] = struct{}{}
	}
	for i, v := range d.ForeignKeys {
		if v.Table == "" || v.Column == "" || v.References == "" ||
			v.ReferencedColumn == "" {
			return fmt.Errorf("foreign key #%d is incomplete: %+v", i+1, v)
		}
		if len(known) == 0 {
			continue
		}
		for _, t := range []string{v.Table, v.References} {
			if _, ok := known[t]; !ok {
				return fmt.Errorf("foreign key #%d uses unknown table %s",
					i+1, t)
			}
		}
	}
	return nil
}
