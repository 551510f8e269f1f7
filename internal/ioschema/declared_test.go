package ioschema_test

import (
	"context"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioschema"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iotesting"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const declaredYAML = `tables:
  - person
  - patient
  - relationship
  - audit_log
foreign_keys:
  - table: patient
    column: patient_id
    references: person
    referenced_column: person_id
  - table: relationship
    column: person_a
    references: person
    referenced_column: person_id
  - table: relationship
    column: person_b
    references: person
    referenced_column: person_id
`

func TestLoadDeclared(t *testing.T) {
	dir := t.TempDir()
	path := iotesting.WriteTempFile(t, dir, "schema.yaml", declaredYAML)

	d, err := ioschema.LoadDeclared(path)
	require.NoError(t, err)
	assert.Len(t, d.ForeignKeys, 3)

	res := schema.NewResolver(d)
	refs, err := res.ReferencingTables(context.Background(),
		"person", "person_id", "patient")
	require.NoError(t, err)
	assert.Equal(t, []schema.TableReference{
		{Table: "relationship", Column: "person_a"},
		{Table: "relationship", Column: "person_b"},
	}, refs.Sorted())
}

func TestLoadDeclaredErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		msg     string
		content string
	}{
		{"bad yaml", "tables: [person"},
		{"unknown table", `tables: [person]
foreign_keys:
  - table: obs
    column: person_id
    references: person
    referenced_column: person_id
`},
		{"incomplete key", `foreign_keys:
  - table: obs
    column: person_id
`},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			path := iotesting.WriteTempFile(t, dir, "bad.yaml", v.content)
			_, err := ioschema.LoadDeclared(path)
			require.Error(t, err)
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, errcode.SchemaDeclaredReadError, gnErr.Code)
		})
	}

	_, err := ioschema.LoadDeclared(dir + "/missing.yaml")
	assert.Error(t, err)
}
