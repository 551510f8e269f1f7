package ioquery

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
)

func ReadError(path string, err error) error {
	msg := "Cannot read patient query file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.QueryFileReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot read %s: %w", fn, path, err),
	}
}

func EmptyError(path string) error {
	msg := "Patient query file <em>%s</em> has no query"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.QueryFileEmptyError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("empty query in %s", path),
	}
}
