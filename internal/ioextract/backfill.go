package ioextract

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/dustin/go-humanize"
)

// backfill brings in root entities that copied rows of sources reference
// but that are not in the target yet, together with their referencing
// rows. Rows copied by a round may reference more missing entities, so
// rounds repeat until nothing is missing.
func (e *Extractor) backfill(ctx context.Context, p *plan, sources ...string) error {
	primary := p.primary()
	closure := p.closures[primary.Table]

	var frontier []string
	for _, v := range sources {
		if closure.HasTable(v) {
			frontier = append(frontier, v)
		}
	}
	if len(frontier) == 0 {
		return nil
	}
	source := strings.Join(frontier, ",")

	prev := e.Phase()
	e.setPhase(subset.Backfill)

	limit := e.cfg.Extract.MaxBackfillRounds
	for round := 1; len(frontier) > 0; round++ {
		var refs []schema.TableReference
		for _, v := range frontier {
			refs = append(refs, closure.Only(v).Sorted()...)
		}

		ids, err := e.op.QueryIDs(ctx, e.st.Missing(refs, primary.Table, primary.Key))
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}
		if round > limit {
			return BackfillLimitError(source, limit)
		}

		slog.Info("Backfilling",
			"source", source,
			"round", round,
			"missing", humanize.Comma(int64(len(ids))),
		)

		counts, err := e.runCopies(ctx, subset.Backfill, e.backfillTasks(p, ids))
		if err != nil {
			return err
		}
		p.backfilled += sum(counts)

		frontier = frontier[:0]
		for _, v := range slices.Sorted(maps.Keys(counts)) {
			if counts[v] > 0 && closure.HasTable(v) {
				frontier = append(frontier, v)
			}
		}
	}

	e.setPhase(prev)
	return nil
}

// backfillTasks copies the missing ids into every root and every table of
// the root closures. Self-referencing and account dependent tables get
// rows only from their own phases. Each statement skips rows that are in
// the target already.
func (e *Extractor) backfillTasks(p *plan, ids []int64) []subset.CopyTask {
	target := e.st.Target

	var res []subset.CopyTask
	for _, r := range p.roots {
		res = append(res, subset.NewCopyTask(subset.Backfill, r.Table,
			subset.And(
				subset.InIDs(r.Key, ids),
				subset.NotCopied(target, r.Table, r.Key),
			),
		))
	}

	filters := make(map[string][]subset.Filter)
	for _, r := range p.roots {
		for table, cols := range p.closures[r.Table].ByTable() {
			if !e.backfillTarget(table) {
				continue
			}
			for _, col := range cols {
				filters[table] = append(filters[table], subset.InIDs(col, ids))
			}
		}
	}

	for _, table := range slices.Sorted(maps.Keys(filters)) {
		key := e.strategies.Lookup(table).Key
		res = append(res, subset.NewCopyTask(subset.Backfill, table,
			subset.And(
				subset.Or(filters[table]...),
				e.locationFilter(p, table),
				subset.NotCopied(target, table, key),
			),
		))
	}
	return res
}

func (e *Extractor) backfillTarget(table string) bool {
	switch e.strategies.Lookup(table).Strategy {
	case subset.SelfReferencing, subset.AccountDependent:
		return false
	}
	return true
}
