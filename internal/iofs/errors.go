package iofs

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
)

// CreateDirError is returned when one of the application directories, or
// the dump directory, cannot be created.
func CreateDirError(dir string, err error) error {
	return pathError(errcode.CreateDirError,
		"Cannot create directory <em>%s</em>", dir, "cannot create directory", err)
}

// CopyFileError is returned when an embedded template cannot be written
// to the config directory.
func CopyFileError(file string, err error) error {
	return pathError(errcode.CopyFileError,
		"Cannot write default file <em>%s</em>", file, "cannot write template", err)
}

// ReadFileError is returned when the config file cannot be read or parsed.
func ReadFileError(path string, err error) error {
	return pathError(errcode.ReadFileError,
		"Cannot read <em>%s</em>", path, "cannot read", err)
}

// WriteFileError is returned when a run artifact cannot be saved.
func WriteFileError(path string, err error) error {
	return pathError(errcode.WriteFileError,
		"Cannot write <em>%s</em>", path, "cannot write", err)
}

func pathError(
	code gn.ErrorCode,
	msg, path, action string,
	err error,
) error {
	pc, _, _, _ := runtime.Caller(2)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: code,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: %s %s: %w", fn.Name(), action, path, err),
	}
}
