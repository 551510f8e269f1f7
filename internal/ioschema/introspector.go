// Package ioschema implements schema.Introspector on top of the MySQL
// catalog and loads declared foreign key graphs from YAML files.
package ioschema

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
)

type mysqlIntrospector struct {
	db       *sql.DB
	database string

	mu     sync.Mutex
	tables []string
	xrefs  map[string]map[string][]schema.CrossReference
}

// NewIntrospector creates an introspector of the given source database.
// Results are cached for the lifetime of the introspector because the
// schema does not change during a run.
func NewIntrospector(db *sql.DB, database string) schema.Introspector {
	return &mysqlIntrospector{
		db:       db,
		database: database,
		xrefs:    make(map[string]map[string][]schema.CrossReference),
	}
}

// ListTables returns base tables of the source database sorted by name.
// Views are ignored, they hold no rows of their own.
func (m *mysqlIntrospector) ListTables(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tables != nil {
		return slices.Clone(m.tables), nil
	}

	if m.db == nil {
		return nil, NotConnectedError()
	}

	q := `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`
	rows, err := m.db.QueryContext(ctx, q, m.database)
	if err != nil {
		return nil, ListTablesError(m.database, err)
	}
	defer rows.Close()

	tables := make([]string, 0, 256)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ListTablesError(m.database, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, ListTablesError(m.database, err)
	}

	m.tables = tables
	return slices.Clone(tables), nil
}

// CrossReferences returns foreign key columns of candidate tables that
// reference parent. All references into parent are read with one catalog
// query and cached.
func (m *mysqlIntrospector) CrossReferences(
	ctx context.Context,
	parent string,
	candidates []string,
) (map[string][]schema.CrossReference, error) {
	all, err := m.referencesInto(ctx, parent)
	if err != nil {
		return nil, err
	}

	res := make(map[string][]schema.CrossReference)
	for table, refs := range all {
		if len(candidates) > 0 && !slices.Contains(candidates, table) {
			continue
		}
		res[table] = slices.Clone(refs)
	}
	return res, nil
}

func (m *mysqlIntrospector) referencesInto(
	ctx context.Context,
	parent string,
) (map[string][]schema.CrossReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res, ok := m.xrefs[parent]; ok {
		return res, nil
	}

	if m.db == nil {
		return nil, NotConnectedError()
	}

	q := `
		SELECT TABLE_NAME, COLUMN_NAME, REFERENCED_COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
			AND REFERENCED_TABLE_SCHEMA = ?
			AND REFERENCED_TABLE_NAME = ?
		ORDER BY TABLE_NAME, COLUMN_NAME
	`
	rows, err := m.db.QueryContext(ctx, q, m.database, m.database, parent)
	if err != nil {
		return nil, ReferencesError(parent, err)
	}
	defer rows.Close()

	res := make(map[string][]schema.CrossReference)
	for rows.Next() {
		var table string
		var ref schema.CrossReference
		if err := rows.Scan(&table, &ref.ChildColumn, &ref.ParentColumn); err != nil {
			return nil, ReferencesError(parent, err)
		}
		res[table] = append(res[table], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, ReferencesError(parent, err)
	}

	m.xrefs[parent] = res
	return res, nil
}
