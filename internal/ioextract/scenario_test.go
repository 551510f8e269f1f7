package ioextract_test

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iocopy"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodb"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodump"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioextract"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioschema"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iotesting"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/db"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping MySQL scenario test")
	}

	ctx := context.Background()
	cfg := iotesting.StartMySQL(t)
	cfg.Update([]config.Option{
		config.OptExtractLocationIDs([]int{5}),
		config.OptExtractEndDate("2021-12-31"),
		config.OptExtractExcludedTables([]string{"audit_log"}),
		config.OptExtractStructureOnlyTables([]string{"global_property"}),
		config.OptExtractSkipDump(true),
	})

	op := iodb.NewMySQLOperator()
	require.NoError(t, op.Connect(ctx, &cfg.Database))
	t.Cleanup(func() { _ = op.Close() })
	require.NoError(t, iotesting.LoadFixture(ctx, op.DB(), cfg.Database.Database))

	root := subset.RenderRootQuery(iotesting.FixtureRootQuery,
		cfg.Database.Database, cfg.Extract.LocationIDs, cfg.Extract.EndDate)
	cp := iocopy.New(op.DB(), cfg)
	ex := ioextract.New(cfg, root, op,
		ioschema.NewIntrospector(op.DB(), cfg.Database.Database),
		cp, iodump.New(cfg),
		ioextract.OptProgress(false),
	)
	require.NoError(t, ex.Extract(ctx))

	target := cfg.Extract.NewDatabase
	ids := func(t *testing.T, col, table string) []int64 {
		t.Helper()
		res, err := op.QueryIDs(ctx, fmt.Sprintf("SELECT %s FROM %s",
			col, subset.Qualified(target, table)))
		require.NoError(t, err)
		slices.Sort(res)
		return res
	}

	t.Run("population", func(t *testing.T) {
		assert.Equal(t, []int64{2, 4}, ids(t, "patient_id", "patient"))
		assert.Equal(t, []int64{2, 4, 7, 10}, ids(t, "person_id", "person"))
		assert.Equal(t, []int64{2, 4, 7, 10}, ids(t, "person_id", "person_name"))
		assert.Equal(t, []int64{1}, ids(t, "person_merge_log_id",
			"person_merge_log"))
		assert.Equal(t, []int64{1, 3}, ids(t, "relationship_id", "relationship"))
		assert.Equal(t, []int64{1, 2, 4, 5}, ids(t, "obs_id", "obs"))
		assert.Equal(t, []int64{1, 2}, ids(t, "encounter_provider_id",
			"encounter_provider"))
		assert.Equal(t, []int64{1, 2}, ids(t, "patient_state_id", "patient_state"))
		assert.Equal(t, []int64{1}, ids(t, "user_id", "users"))
		assert.Equal(t, []int64{1}, ids(t, "user_id", "user_role"))
		assert.Equal(t, []int64{1, 3, 5}, ids(t, "location_id", "location"))
	})

	t.Run("excluded and structure-only tables", func(t *testing.T) {
		assert.False(t, tableExists(t, op, target, "audit_log"))
		assert.True(t, tableExists(t, op, target, "global_property"))
		res, err := op.QueryIDs(ctx, "SELECT COUNT(*) FROM "+
			subset.Qualified(target, "global_property"))
		require.NoError(t, err)
		assert.Equal(t, []int64{0}, res)
	})

	t.Run("no dangling person references", func(t *testing.T) {
		refs, err := schema.NewResolver(
			ioschema.NewIntrospector(op.DB(), target),
		).ReferencingTables(ctx, "person", "person_id")
		require.NoError(t, err)
		assert.Equal(t, []string{"loser_person_id", "winner_person_id"},
			refs.ByTable()["person_merge_log"])

		st := subset.Statements{Source: cfg.Database.Database, Target: target}
		missing, err := op.QueryIDs(ctx, st.Missing(refs.Sorted(), "person", "person_id"))
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("self reference copy is repeatable", func(t *testing.T) {
		for _, col := range []string{"person_a", "person_b"} {
			task := subset.NewCopyTask(subset.SpecialCasePhases, "relationship",
				subset.And(
					subset.NotCopied(target, "relationship", "relationship_id"),
					subset.InTarget(col, target, "person", "person_id"),
				),
			)
			n, err := cp.Copy(ctx, task)
			require.NoError(t, err)
			assert.Zero(t, n)
		}
		assert.Equal(t, []int64{1, 3}, ids(t, "relationship_id", "relationship"))
	})

	t.Run("second run refuses existing target", func(t *testing.T) {
		err := ex.Extract(ctx)
		require.Error(t, err)
		assert.True(t, tableExists(t, op, target, "person"))
	})

	t.Run("drop after", func(t *testing.T) {
		cfg2 := *cfg
		cfg2.Extract.NewDatabase = target + "_tmp"
		cfg2.Extract.DropTargetAfter = true
		ex := ioextract.New(&cfg2, root, op,
			ioschema.NewIntrospector(op.DB(), cfg.Database.Database),
			iocopy.New(op.DB(), &cfg2), iodump.New(&cfg2),
			ioextract.OptProgress(false),
		)
		require.NoError(t, ex.Extract(ctx))

		exists, err := op.DatabaseExists(ctx, cfg2.Extract.NewDatabase)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func tableExists(t *testing.T, op db.Operator, database, table string) bool {
	t.Helper()
	q := fmt.Sprintf(`SELECT COUNT(*) FROM information_schema.TABLES
WHERE TABLE_SCHEMA = '%s' AND TABLE_NAME = '%s'`, database, table)
	res, err := op.QueryIDs(context.Background(), q)
	require.NoError(t, err)
	return len(res) == 1 && res[0] > 0
}
