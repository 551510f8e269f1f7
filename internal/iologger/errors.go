package iologger

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
)

// CreateLogFileError is returned when the log file cannot be opened or
// rotated at the start of a run.
func CreateLogFileError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CreateLogFileError,
		Msg: "Cannot start log file <em>%s</em>\n" +
			"   Set <em>log.destination</em> to stderr to log without a file.",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: cannot rotate log file %s: %w", fn.Name(), path, err),
	}
}
