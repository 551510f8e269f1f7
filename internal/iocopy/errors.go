package iocopy

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/gnames/gn"
)

func ConnectionError(table string, err error) error {
	msg := "Cannot get a database connection to copy <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: connection for %s: %w", fn, table, err),
	}
}

func StructureError(table, sql string, err error) error {
	msg := "Cannot create table <em>%s</em> in the target database"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyStructureError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %q: %w", fn, sql, err),
	}
}

func CountError(task subset.CopyTask, sql string, err error) error {
	msg := "Cannot count rows of <em>%s</em> during <em>%s</em>"
	vars := []any{task.Table, task.Phase.String()}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyCountError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %q: %w", fn, sql, err),
	}
}

func InsertError(task subset.CopyTask, sql string, err error) error {
	msg := "Cannot copy rows of <em>%s</em> during <em>%s</em>"
	vars := []any{task.Table, task.Phase.String()}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyInsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %q: %w", fn, sql, err),
	}
}

func CommitError(task subset.CopyTask, err error) error {
	msg := "Cannot commit rows of <em>%s</em> during <em>%s</em>"
	vars := []any{task.Table, task.Phase.String()}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyCommitError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: commit: %w", fn, err),
	}
}

// MismatchError is returned when the rows inserted by a task differ from
// the rows its filter selected at the start of the task.
func MismatchError(task subset.CopyTask, counted, copied int64) error {
	msg := "Copied <em>%d</em> of <em>%d</em> rows of <em>%s</em> during <em>%s</em>"
	vars := []any{copied, counted, task.Table, task.Phase.String()}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyMismatchError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: counted %d rows, inserted %d",
			fn, counted, copied),
	}
}
