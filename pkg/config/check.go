package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/errcode"
	"github.com/gnames/gn"
)

// CheckExtract verifies that mandatory run parameters are present.
// It is called before any database is created or modified.
func (c *Config) CheckExtract() error {
	if c.Extract.NewDatabase == "" {
		return &gn.Error{
			Code: errcode.ConfigMissingTargetError,
			Msg: "Name of the new database is not set.\n" +
				"   Use <em>--new-db</em> or <em>extract.new_database</em> in config.",
			Err: errors.New("new database name is empty"),
		}
	}

	if c.Extract.NewDatabase == c.Database.Database {
		return &gn.Error{
			Code: errcode.ConfigSameDatabaseError,
			Msg:  "New database <em>%s</em> cannot be the source database",
			Vars: []any{c.Extract.NewDatabase},
			Err: fmt.Errorf("target equals source database %s",
				c.Database.Database),
		}
	}

	if len(c.Extract.LocationIDs) == 0 {
		return &gn.Error{
			Code: errcode.ConfigMissingLocationsError,
			Msg: "No location ids are given.\n" +
				"   Use <em>--locations</em> or <em>extract.location_ids</em> in config.",
			Err: errors.New("location ids are empty"),
		}
	}

	if c.Extract.EndDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Extract.EndDate); err != nil {
			return &gn.Error{
				Code: errcode.ConfigEndDateError,
				Msg:  "End date <em>%s</em> is not in YYYY-MM-DD format",
				Vars: []any{c.Extract.EndDate},
				Err:  fmt.Errorf("cannot parse end date: %w", err),
			}
		}
	}

	return nil
}

// EndDateOr returns the configured end date, or the date of now if the end
// date is not set.
func (c *Config) EndDateOr(now time.Time) string {
	if c.Extract.EndDate != "" {
		return c.Extract.EndDate
	}
	return now.Format(time.DateOnly)
}
