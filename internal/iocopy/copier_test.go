package iocopy_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iocopy"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodb"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iotesting"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/db"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*config.Config, db.Operator) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := iotesting.StartMySQL(t)
	op := iodb.NewMySQLOperator()
	require.NoError(t, op.Connect(ctx, &cfg.Database))
	t.Cleanup(func() { op.Close() })

	require.NoError(t, iotesting.LoadFixture(ctx, op.DB(), cfg.Database.Database))
	require.NoError(t, op.CreateDatabase(ctx, cfg.Extract.NewDatabase))
	return cfg, op
}

func count(t *testing.T, pool *sql.DB, q string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(q).Scan(&n))
	return n
}

func TestCopier(t *testing.T) {
	cfg, op := setup(t)
	ctx := context.Background()
	tgt := cfg.Extract.NewDatabase

	t.Run("structure copy is idempotent", func(t *testing.T) {
		cp := iocopy.New(op.DB(), cfg)
		require.NoError(t, cp.CopyStructure(ctx, "global_property"))
		require.NoError(t, cp.CopyStructure(ctx, "global_property"))
		assert.Equal(t, 0, count(t, op.DB(),
			"SELECT COUNT(*) FROM `"+tgt+"`.global_property"))
	})

	t.Run("batches partition the rows", func(t *testing.T) {
		cfg.Database.BatchSize = 3
		cp := iocopy.New(op.DB(), cfg)
		task := subset.NewCopyTask(subset.RemainderCopy, "person_name", "")
		n, err := cp.Copy(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
		assert.Equal(t, 10, count(t, op.DB(),
			"SELECT COUNT(DISTINCT person_name_id) FROM `"+tgt+"`.person_name"))
	})

	t.Run("filtered copy", func(t *testing.T) {
		cp := iocopy.New(op.DB(), cfg)
		task := subset.NewCopyTask(subset.RootCopy, "person",
			subset.InIDs("person_id", []int64{2, 4}))
		n, err := cp.Copy(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		task = subset.NewCopyTask(subset.RootCopy, "person",
			subset.And(subset.InIDs("person_id", []int64{2, 4, 7}),
				subset.NotCopied(tgt, "person", "person_id")))
		n, err = cp.Copy(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "rows already in target are skipped")
	})

	t.Run("batches of a shrinking selection", func(t *testing.T) {
		cfg.Database.BatchSize = 2
		cp := iocopy.New(op.DB(), cfg)
		require.NoError(t, cp.CopyStructure(ctx, "obs"))
		_, err := op.DB().Exec("INSERT INTO `" + tgt +
			"`.obs VALUES (3,6,3,3,1)")
		require.NoError(t, err)

		// every inserted page leaves the NotCopied selection
		task := subset.NewCopyTask(subset.Backfill, "obs",
			subset.NotCopied(tgt, "obs", "obs_id"))
		n, err := cp.Copy(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
		assert.Equal(t, 6, count(t, op.DB(),
			"SELECT COUNT(DISTINCT obs_id) FROM `"+tgt+"`.obs"))

		n, err = cp.Copy(ctx, task)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("failed task is rolled back", func(t *testing.T) {
		cp := iocopy.New(op.DB(), cfg)
		task := subset.NewCopyTask(subset.ClosureCopy, "concept",
			"t.no_such_column = 1")
		_, err := cp.Copy(ctx, task)
		require.Error(t, err)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.CopyCountError, gnErr.Code)
		assert.Equal(t, 0, count(t, op.DB(),
			"SELECT COUNT(*) FROM `"+tgt+"`.concept"))

		// duplicate keys fail in the middle of a paged copy
		cfg.Database.BatchSize = 1
		cp = iocopy.New(op.DB(), cfg)
		_, err = op.DB().Exec("INSERT INTO `" + tgt + "`.concept VALUES (2,'HEIGHT')")
		require.NoError(t, err)
		_, err = cp.Copy(ctx, subset.NewCopyTask(subset.RemainderCopy, "concept", ""))
		require.Error(t, err)
		assert.Equal(t, 1, count(t, op.DB(),
			"SELECT COUNT(*) FROM `"+tgt+"`.concept"),
			"first page is not committed")
	})
}
