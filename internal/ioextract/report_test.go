package ioextract_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioextract"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReportPath(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		msg, dumpFile, exp string
	}{
		{"next to dump", "/dumps/openmrs_q4.2024-03-01T10:31:12.sql",
			"/dumps/openmrs_q4.2024-03-01T10:31:12.sql.report.yaml"},
		{"no dump", "",
			filepath.Join("/dumps", "openmrs_q4.2024-03-01T10:30:00.report.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			res := ioextract.ReportPath("/dumps", tt.dumpFile, "openmrs_q4", started)
			assert.Equal(t, tt.exp, res)
		})
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.report.yaml")
	rep := ioextract.Report{
		RunID:          "run-1",
		SourceDatabase: "openmrs",
		TargetDatabase: "openmrs_q4",
		LocationIDs:    []int{5},
		Phase:          subset.Failed,
		FailedAt:       subset.Backfill.String(),
		Error:          "too many rounds",
		TotalRows:      12,
		Rows:           map[string]int64{"person": 3, "obs": 9},
	}
	require.NoError(t, ioextract.WriteReport(path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, yaml.Unmarshal(data, &res))
	assert.Equal(t, "failed", res["phase"])
	assert.Equal(t, "backfill", res["failed_at"])
	assert.Equal(t, "openmrs_q4", res["target_database"])
	assert.Equal(t, map[string]any{"obs": 9, "person": 3}, res["rows"])
	assert.NotContains(t, res, "dump_file")

	err = ioextract.WriteReport(filepath.Join(path, "nested.yaml"), rep)
	require.Error(t, err)
	assert.Equal(t, errcode.WriteFileError, errorCode(t, err))
}
