package iofs

import (
	"errors"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("permission denied")

	tests := []struct {
		msg    string
		err    error
		code   gn.ErrorCode
		path   string
		errMsg string
	}{
		{
			msg:    "create dir",
			err:    CreateDirError("/app/config", cause),
			code:   errcode.CreateDirError,
			path:   "/app/config",
			errMsg: "cannot create directory",
		},
		{
			msg:    "write template",
			err:    CopyFileError("/app/config/patients.sql", cause),
			code:   errcode.CopyFileError,
			path:   "/app/config/patients.sql",
			errMsg: "cannot write template",
		},
		{
			msg:    "read file",
			err:    ReadFileError("/app/config/config.yaml", cause),
			code:   errcode.ReadFileError,
			path:   "/app/config/config.yaml",
			errMsg: "cannot read",
		},
		{
			msg:    "write report",
			err:    WriteFileError("/dumps/openmrs_q4.report.yaml", cause),
			code:   errcode.WriteFileError,
			path:   "/dumps/openmrs_q4.report.yaml",
			errMsg: "cannot write /dumps/openmrs_q4.report.yaml",
		},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			gnErr, ok := v.err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, v.code, gnErr.Code)
			assert.Contains(t, gnErr.Msg, "<em>%s</em>")
			assert.Equal(t, []any{v.path}, gnErr.Vars)
			assert.ErrorIs(t, gnErr.Err, cause)
			assert.Contains(t, gnErr.Err.Error(), v.errMsg)
			assert.Contains(t, gnErr.Err.Error(), "iofs",
				"caller function is recorded")
		})
	}
}
