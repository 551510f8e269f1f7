package subset

import (
	"strings"
)

// RootFilter is the SQL query selecting ids of the initial population.
// It is opaque to the extraction and is embedded into IN clauses.
type RootFilter string

// Placeholders understood in the root query template.
const (
	SourceDatabasePlaceholder = "sourceDatabase"
	LocationsPlaceholder      = ":locations"
	EndDatePlaceholder        = ":endDate"
)

// RenderRootQuery turns a query template into a RootFilter. Lines are
// joined with spaces, a trailing semicolon is dropped, and placeholders
// are replaced with the source database name, comma-joined location ids
// and the quoted end date (yyyy-mm-dd).
func RenderRootQuery(
	tmpl, sourceDB string,
	locations []int,
	endDate string,
) RootFilter {
	lines := strings.Split(strings.ReplaceAll(tmpl, "\r\n", "\n"), "\n")
	parts := make([]string, 0, len(lines))
	for _, v := range lines {
		v = strings.TrimSpace(v)
		if v == "" || strings.HasPrefix(v, "--") {
			continue
		}
		parts = append(parts, v)
	}
	q := strings.TrimSpace(strings.Join(parts, " "))
	q = strings.TrimRight(q, "; ")

	r := strings.NewReplacer(
		SourceDatabasePlaceholder, sourceDB,
		LocationsPlaceholder, JoinIDs(locations),
		EndDatePlaceholder, "'"+endDate+"'",
	)
	return RootFilter(r.Replace(q))
}

func (r RootFilter) String() string {
	return string(r)
}
