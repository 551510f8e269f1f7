package ioextract

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/gnames/gn"
)

// TargetExistsError is returned when the target database is already on
// the server. Nothing is created or dropped in that case.
func TargetExistsError(database string) error {
	msg := `Target database <em>%s</em> already exists

<em>How to fix:</em>
  1. Choose another name with <em>--new-database</em>
  2. Or drop the existing database if it is not needed anymore`
	vars := []any{database}
	return &gn.Error{
		Code: errcode.DBTargetExistsError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("target database %s exists", database),
	}
}

// PhaseError wraps failures of several tasks of one parallel batch.
func PhaseError(phase subset.Phase, failed int, err error) error {
	msg := "<em>%d</em> tasks failed during <em>%s</em>"
	vars := []any{failed, phase.String()}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ExtractPhaseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: phase %s: %w", fn, phase, err),
	}
}

// BackfillLimitError is returned when new references keep appearing after
// the allowed number of rounds.
func BackfillLimitError(source string, rounds int) error {
	msg := `Backfill from <em>%s</em> did not converge after <em>%d</em> rounds

<em>How to fix:</em>
  Increase <em>extract.max_backfill_rounds</em> in config.yaml`
	vars := []any{source, rounds}
	return &gn.Error{
		Code: errcode.ExtractBackfillLimitError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("backfill from %s exceeded %d rounds", source, rounds),
	}
}

// CancelledError is returned when the run is interrupted.
func CancelledError(phase subset.Phase, err error) error {
	msg := "Extraction cancelled during <em>%s</em>"
	vars := []any{phase.String()}
	return &gn.Error{
		Code: errcode.ExtractCancelledError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cancelled during %s: %w", phase, err),
	}
}

// NoRootError is returned when none of the root tables of the strategy
// table exists in the source schema.
func NoRootError(database string, roots []string) error {
	msg := "Database <em>%s</em> has none of the root tables %v"
	vars := []any{database, roots}
	return &gn.Error{
		Code: errcode.ExtractNoRootError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no root tables %v in %s", roots, database),
	}
}
