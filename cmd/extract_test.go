package cmd

import (
	"bytes"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetExtractCmd_Exists verifies getExtractCmd returns
// a valid command.
func TestGetExtractCmd_Exists(t *testing.T) {
	cmd := getExtractCmd()
	require.NotNil(t, cmd, "Extract command should exist")
	assert.Equal(t, "extract", cmd.Use)
	assert.NotNil(t, cmd.RunE, "RunE should be set")
	assert.Contains(t, cmd.Short, "subset")
	assert.Contains(t, cmd.Long, "mysqldump")
	assert.Contains(t, cmd.Long, "Root entities (person, patient)")
	assert.Contains(t, cmd.Long, "structure-only tables")
	assert.NotContains(t, cmd.Long, "visit")
}

// TestGetExtractCmd_Flags verifies flag names, shorthands
// and defaults.
func TestGetExtractCmd_Flags(t *testing.T) {
	tests := []struct {
		name, short, def string
	}{
		{"url", "u", ""},
		{"new-db", "n", ""},
		{"locations", "l", "[]"},
		{"end-date", "e", ""},
		{"query", "q", ""},
		{"exclude", "x", "[]"},
		{"structure-only", "s", "[]"},
		{"restrict-by-location", "r", "false"},
		{"drop-after", "", "false"},
		{"dump-dir", "d", ""},
		{"skip-dump", "", "false"},
		{"schema", "", ""},
		{"batch-size", "b", "0"},
		{"jobs", "j", "0"},
		{"max-backfill-rounds", "", "0"},
	}

	cmd := getExtractCmd()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, f, "--%s flag should exist", tt.name)
			assert.Equal(t, tt.short, f.Shorthand)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

// TestExtractFlags_Options verifies that only changed flags
// override the configuration.
func TestExtractFlags_Options(t *testing.T) {
	var flags extractFlags
	cmd := getExtractCmd()
	cmd.ResetFlags()
	flags.register(cmd)

	err := cmd.ParseFlags([]string{
		"-u", "mysql://root:secret@db:3307/openmrs_prod",
		"-n", "openmrs_q4",
		"-l", "5,7",
		"-e", "2023-12-31",
		"-x", "audit_log, hl7_in_archive",
		"--drop-after",
		"-j", "12",
	})
	require.NoError(t, err)

	c := config.New()
	c.Update(flags.options(cmd))

	assert.Equal(t, "db", c.Database.Host)
	assert.Equal(t, 3307, c.Database.Port)
	assert.Equal(t, "root", c.Database.User)
	assert.Equal(t, "openmrs_prod", c.Database.Database)
	assert.Equal(t, "openmrs_q4", c.Extract.NewDatabase)
	assert.Equal(t, []int{5, 7}, c.Extract.LocationIDs)
	assert.Equal(t, "2023-12-31", c.Extract.EndDate)
	assert.Equal(t, []string{"audit_log", "hl7_in_archive"},
		c.Extract.ExcludedTables)
	assert.True(t, c.Extract.DropTargetAfter)
	assert.Equal(t, 12, c.JobsNumber)

	// untouched flags keep defaults
	def := config.New()
	assert.Equal(t, def.Database.BatchSize, c.Database.BatchSize)
	assert.Equal(t, def.Extract.DumpDir, c.Extract.DumpDir)
	assert.Equal(t, def.Extract.MaxBackfillRounds, c.Extract.MaxBackfillRounds)
	assert.False(t, c.Extract.SkipDump)
}

// TestExtractFlags_NoOptions verifies that nothing is
// overridden without flags.
func TestExtractFlags_NoOptions(t *testing.T) {
	var flags extractFlags
	cmd := getExtractCmd()
	cmd.ResetFlags()
	flags.register(cmd)

	require.NoError(t, cmd.ParseFlags(nil))
	assert.Empty(t, flags.options(cmd))
}

// TestGetExtractCmd_HelpText verifies help text content.
func TestGetExtractCmd_HelpText(t *testing.T) {
	cmd := getExtractCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	help := buf.String()
	assert.Contains(t, help, "--new-db")
	assert.Contains(t, help, "--locations")
	assert.Contains(t, help, "--restrict-by-location")
}
