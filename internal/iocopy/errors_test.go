package iocopy

import (
	"errors"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyErrors(t *testing.T) {
	cause := errors.New("lock wait timeout")
	task := subset.NewCopyTask(subset.ClosureCopy, "obs", "t.obs_id > 0")
	q := "INSERT INTO `tgt`.`obs` (SELECT 1)"

	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		vars []any
		sql  bool
	}{
		{"connection", ConnectionError("obs", cause),
			errcode.CopyConnectionError, []any{"obs"}, false},
		{"structure", StructureError("obs", q, cause),
			errcode.CopyStructureError, []any{"obs"}, true},
		{"count", CountError(task, q, cause),
			errcode.CopyCountError, []any{"obs", "closure-copy"}, true},
		{"insert", InsertError(task, q, cause),
			errcode.CopyInsertError, []any{"obs", "closure-copy"}, true},
		{"commit", CommitError(task, cause),
			errcode.CopyCommitError, []any{"obs", "closure-copy"}, false},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			gnErr, ok := v.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")
			assert.Equal(t, v.code, gnErr.Code)
			assert.Contains(t, gnErr.Msg, "<em>%s</em>")
			assert.Equal(t, v.vars, gnErr.Vars)
			assert.ErrorIs(t, gnErr.Err, cause)
			if v.sql {
				assert.Contains(t, gnErr.Err.Error(), "INSERT INTO",
					"statement text is kept for diagnostics")
			}
		})
	}
}

func TestMismatchError(t *testing.T) {
	task := subset.NewCopyTask(subset.Backfill, "obs", "t.obs_id > 0")
	err := MismatchError(task, 10, 6)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CopyMismatchError, gnErr.Code)
	assert.Equal(t, []any{int64(6), int64(10), "obs", "backfill"}, gnErr.Vars)
	assert.Contains(t, gnErr.Err.Error(), "counted 10 rows, inserted 6")
}
