package ioextract

import (
	"slices"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
)

// plan is the state handed from phase to phase. Only the orchestrating
// goroutine changes it, batch jobs write through the Extractor's ledger
// or under a lock.
type plan struct {
	// tables still waiting for a generic copy.
	tables subset.TableSet

	// special tables owned by strategy rules and present in the source.
	special []string

	// structure tables are created without rows.
	structure []string

	// excluded tables never appear in the target.
	excluded []string

	// roots are Root rules present in the source, the first one is the
	// entity backfill looks for.
	roots []subset.Rule

	// closures keep references into each root, keyed by root table.
	closures map[string]schema.References

	// locations keep references into location when rows are restricted
	// by location.
	locations schema.References

	// backfilled counts rows inserted by backfill rounds so far.
	backfilled int64
}

func newPlan(cfg *config.Config, tables []string) *plan {
	res := &plan{
		excluded: slices.Clone(cfg.Extract.ExcludedTables),
		closures: make(map[string]schema.References),
	}
	for _, v := range cfg.Extract.StructureOnlyTables {
		if slices.Contains(tables, v) && !slices.Contains(res.structure, v) {
			res.structure = append(res.structure, v)
		}
	}
	res.tables = subset.NewTableSet(
		tables,
		slices.Concat(res.excluded, res.structure)...,
	)
	return res
}

func (p *plan) isSpecial(table string) bool {
	return slices.Contains(p.special, table)
}

// skipped returns tables that must not take part in closures.
func (p *plan) skipped() []string {
	return slices.Concat(p.excluded, p.structure)
}

// primary returns the root rule whose references backfill resolves.
func (p *plan) primary() subset.Rule {
	return p.roots[0]
}
