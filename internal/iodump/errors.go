package iodump

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
)

func StartError(command string, err error) error {
	msg := "Cannot run <em>%s</em>, the dump file is not created"
	vars := []any{command}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DumpStartError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot start %s: %w", fn, command, err),
	}
}

func ExitError(database string, code int, stderr string, err error) error {
	msg := "Dump of <em>%s</em> failed with exit code %d"
	vars := []any{database, code}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DumpExitError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %s: %w", fn, stderr, err),
	}
}
