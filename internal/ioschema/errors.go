package ioschema

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for when introspection
// is attempted without database connection.
func NotConnectedError() error {
	msg := "Schema introspection attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// ListTablesError creates an error for failures to read the
// list of tables from the catalog.
func ListTablesError(database string, err error) error {
	msg := `Cannot list tables of <em>%s</em>

<em>How to fix:</em>
  1. Check that the database exists
  2. Check that the user can read information_schema`
	vars := []any{database}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaListTablesError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot list tables of %s: %w",
			fn, database, err),
	}
}

// ReferencesError creates an error for failures to read
// foreign keys into a parent table.
func ReferencesError(parent string, err error) error {
	msg := "Cannot read foreign keys referencing <em>%s</em>"
	vars := []any{parent}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaReferencesError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read references into %s: %w",
			fn, parent, err),
	}
}

// DeclaredReadError creates an error for unreadable or
// invalid declared schema files.
func DeclaredReadError(path string, err error) error {
	msg := "Cannot use declared schema <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaDeclaredReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: bad schema file %s: %w", fn, path, err),
	}
}

// UnknownTableError creates an error for a table that is
// not part of the source schema.
func UnknownTableError(table, database string) error {
	msg := "Table <em>%s</em> is not found in <em>%s</em>"
	vars := []any{table, database}
	return &gn.Error{
		Code: errcode.SchemaUnknownTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown table %s.%s", database, table),
	}
}
