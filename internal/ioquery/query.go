// Package ioquery reads the patient query file and renders it into the
// root filter of an extraction run.
package ioquery

import (
	"os"
	"strings"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
)

// LoadRootFilter reads the configured patient query file and substitutes
// the source database, location ids and end date. When the end date is
// not set, now is used.
func LoadRootFilter(cfg *config.Config, now time.Time) (subset.RootFilter, error) {
	path := cfg.PatientQueryFile()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ReadError(path, err)
	}

	tmpl := string(data)
	if strings.TrimSpace(tmpl) == "" {
		return "", EmptyError(path)
	}

	res := subset.RenderRootQuery(
		tmpl,
		cfg.Database.Database,
		cfg.Extract.LocationIDs,
		cfg.EndDateOr(now),
	)
	if res == "" {
		return "", EmptyError(path)
	}
	return res, nil
}
