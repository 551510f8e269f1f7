package config

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

var (
	errUnsupportedScheme = errors.New("only mysql:// URLs are supported")
	errBadPort           = errors.New("port has to be a positive number")

	identRx = regexp.MustCompile(`^[A-Za-z0-9_$]+$`)
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only HomeDir.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int
	s = c.Database.Host
	if s != "" {
		res = append(res, OptDatabaseHost(s))
	}
	i = c.Database.Port
	if i > 0 {
		res = append(res, OptDatabasePort(i))
	}
	s = c.Database.User
	if s != "" {
		res = append(res, OptDatabaseUser(s))
	}
	s = c.Database.Password
	if s != "" {
		res = append(res, OptDatabasePassword(s))
	}
	s = c.Database.Database
	if s != "" {
		res = append(res, OptDatabaseDatabase(s))
	}
	i = c.Database.MaxConnections
	if i > 0 {
		res = append(res, OptDatabaseMaxConnections(i))
	}
	i = c.Database.BatchSize
	if i > 0 {
		res = append(res, OptDatabaseBatchSize(i))
	}

	s = c.Extract.NewDatabase
	if s != "" {
		res = append(res, OptExtractNewDatabase(s))
	}
	if len(c.Extract.LocationIDs) > 0 {
		res = append(res, OptExtractLocationIDs(c.Extract.LocationIDs))
	}
	s = c.Extract.EndDate
	if s != "" {
		res = append(res, OptExtractEndDate(s))
	}
	s = c.Extract.PatientQueryFile
	if s != "" {
		res = append(res, OptExtractPatientQueryFile(s))
	}
	if len(c.Extract.ExcludedTables) > 0 {
		res = append(res, OptExtractExcludedTables(c.Extract.ExcludedTables))
	}
	if len(c.Extract.StructureOnlyTables) > 0 {
		res = append(res,
			OptExtractStructureOnlyTables(c.Extract.StructureOnlyTables))
	}
	if c.Extract.RestrictByLocation {
		res = append(res, OptExtractRestrictByLocation(true))
	}
	if c.Extract.DropTargetAfter {
		res = append(res, OptExtractDropTargetAfter(true))
	}
	s = c.Extract.DumpDir
	if s != "" {
		res = append(res, OptExtractDumpDir(s))
	}
	if c.Extract.SkipDump {
		res = append(res, OptExtractSkipDump(true))
	}
	s = c.Extract.SchemaFile
	if s != "" {
		res = append(res, OptExtractSchemaFile(s))
	}
	i = c.Extract.MaxBackfillRounds
	if i > 0 {
		res = append(res, OptExtractMaxBackfillRounds(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidIdentifier(name, s string) bool {
	res := identRx.MatchString(s)
	if !res {
		gn.Warn("<em>%s</em> '%s' is not a valid MySQL identifier, ignoring",
			name, s)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
