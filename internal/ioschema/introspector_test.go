package ioschema_test

import (
	"context"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodb"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioschema"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iotesting"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrospector(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := iotesting.StartMySQL(t)

	op := iodb.NewMySQLOperator()
	require.NoError(t, op.Connect(ctx, &cfg.Database))
	defer op.Close()
	require.NoError(t, iotesting.LoadFixture(ctx, op.DB(), cfg.Database.Database))

	in := ioschema.NewIntrospector(op.DB(), cfg.Database.Database)

	tables, err := in.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "person")
	assert.Contains(t, tables, "global_property")
	assert.NotContains(t, tables, "patient_names", "views are not listed")

	xrefs, err := in.CrossReferences(ctx, "person", []string{"relationship", "concept"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]schema.CrossReference{
		"relationship": {
			{ChildColumn: "person_a", ParentColumn: "person_id"},
			{ChildColumn: "person_b", ParentColumn: "person_id"},
		},
	}, xrefs, "tables without foreign keys have no entry")

	res := schema.NewResolver(in)
	refs, err := res.ReferencingTables(ctx, "person", "person_id", "patient")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"audit_log", "obs", "person_merge_log", "person_name", "provider",
		"relationship", "users",
	}, refs.Tables())

	refs, err = res.ReferencingTables(ctx, "location", "location_id", "location")
	require.NoError(t, err)
	assert.Equal(t, []string{"encounter", "obs"}, refs.Tables())

	// cached results survive a closed pool
	require.NoError(t, op.Close())
	again, err := in.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, tables, again)
}
