package iodb

import (
	"fmt"
	"runtime"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
)

// ConnectionError is returned when database connection fails.
type ConnectionError struct {
	error
	gnlib.MessageBase
}

// NewConnectionError creates a connection error with user-friendly message.
func NewConnectionError(
	host string,
	port int,
	database, user string,
	cause error,
) error {
	userBase := gnlib.NewMessage(
		`<title>Database Connection Failed</title>

<warning>Could not connect to MySQL database.</warning>

<em>Possible causes:</em>
  • MySQL is not running
  • Database configuration is incorrect
  • Network connectivity issues

<em>How to fix:</em>
  1. Check if MySQL is running:
     <em>mysqladmin -h %s -P %d -u %s ping</em>

  2. Check your configuration file:
     <em>~/.config/fghextractor/config.yaml</em>

  3. Review connection settings:
     Host: %s
     Port: %d
     Database: %s
     User: %s
`,
		[]any{
			host, port, user,
			host, port, database, user,
		},
	)

	return ConnectionError{
		error: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			host, port, database, cause),
		MessageBase: userBase,
	}
}

func NotConnectedError() error {
	msg := "Database is not connected"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: connect before running queries", fn),
	}
}

func CheckExistsError(name string, err error) error {
	msg := "Cannot check if database <em>%s</em> exists"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBCheckExistsError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot query schemata for %s: %w",
			fn, name, err),
	}
}

func CreateDatabaseError(name string, err error) error {
	msg := "Cannot create database <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBCreateDatabaseError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create database %s: %w",
			fn, name, err),
	}
}

func DropDatabaseError(name string, err error) error {
	msg := "Cannot drop database <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBDropDatabaseError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot drop database %s: %w",
			fn, name, err),
	}
}

func QueryIDsError(query string, err error) error {
	msg := "Cannot collect ids with <em>%s</em>"
	vars := []any{query}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBQueryIDsError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: query failed: %w", fn, err),
	}
}
