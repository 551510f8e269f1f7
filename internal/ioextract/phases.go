package ioextract

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/dustin/go-humanize"
)

func (e *Extractor) structureCopy(ctx context.Context, p *plan) error {
	if len(p.structure) == 0 {
		return nil
	}
	err := e.runBatch(ctx, subset.StructureCopy, e.structureJobs(p.structure))
	if err != nil {
		return err
	}
	slog.Info("Structure-only tables created", "tables", p.structure)
	return nil
}

// rootCopy copies the initial population, all roots in parallel.
func (e *Extractor) rootCopy(ctx context.Context, p *plan) error {
	tasks := make([]subset.CopyTask, len(p.roots))
	for i, r := range p.roots {
		tasks[i] = subset.NewCopyTask(
			subset.RootCopy, r.Table, subset.InRoot(r.Key, e.root),
		)
	}

	counts, err := e.runCopies(ctx, subset.RootCopy, tasks)
	if err != nil {
		return err
	}
	for _, r := range p.roots {
		slog.Info("Root entity copied",
			"table", r.Table, "rows", humanize.Comma(counts[r.Table]))
	}
	return nil
}

// discoverClosures finds tables referencing every root and, when rows are
// restricted by location, tables referencing location. Other roots,
// excluded and structure-only tables are left out of each closure.
func (e *Extractor) discoverClosures(ctx context.Context, p *plan) error {
	var mu sync.Mutex
	var jobs []job

	for _, r := range p.roots {
		excluded := p.skipped()
		for _, o := range p.roots {
			if o.Table != r.Table {
				excluded = append(excluded, o.Table)
			}
		}
		jobs = append(jobs, job{
			name: r.Table,
			run: func(ctx context.Context) error {
				refs, err := e.resolver.ReferencingTables(
					ctx, r.Table, r.Key, excluded...,
				)
				if err != nil {
					return err
				}
				mu.Lock()
				p.closures[r.Table] = refs
				mu.Unlock()
				slog.Info("Closure discovered",
					"parent", r.Table, "tables", refs.Tables())
				return nil
			},
		})
	}

	if e.cfg.Extract.RestrictByLocation {
		jobs = append(jobs, job{
			name: locationTable,
			run: func(ctx context.Context) error {
				refs, err := e.resolver.ReferencingTables(
					ctx, locationTable, locationKey, p.skipped()...,
				)
				if err != nil {
					return err
				}
				mu.Lock()
				p.locations = refs
				mu.Unlock()
				slog.Info("Location restriction",
					"tables", refs.Tables(),
					"locations", e.cfg.Extract.LocationIDs)
				return nil
			},
		})
	}

	return e.runBatch(ctx, subset.ClosureDiscovery, jobs)
}

// closureCopy claims every generic table of the root closures and copies
// rows that reference already copied roots. Account tables of a closure
// are copied here too, their missing rows come in the account phase.
// A row selected through one root column may point to an uncopied root
// through another, so the copied tables are backfilled afterwards.
func (e *Extractor) closureCopy(ctx context.Context, p *plan) error {
	var union []string
	for _, r := range p.roots {
		union = append(union, p.closures[r.Table].Tables()...)
	}
	slices.Sort(union)
	union = slices.Compact(union)

	names, rest := p.tables.Claim(union...)
	p.tables = rest
	for _, v := range union {
		if p.isSpecial(v) && e.strategies.Lookup(v).Strategy == subset.Account {
			names = append(names, v)
		}
	}

	tasks := make([]subset.CopyTask, len(names))
	for i, v := range names {
		tasks[i] = subset.NewCopyTask(
			subset.ClosureCopy, v, e.closureFilter(p, v),
		)
	}

	counts, err := e.runCopies(ctx, subset.ClosureCopy, tasks)
	if err != nil {
		return err
	}
	slog.Info("Referencing tables copied",
		"tables", len(tasks), "rows", humanize.Comma(sum(counts)))

	return e.backfill(ctx, p, slices.Sorted(slices.Values(names))...)
}

// remainderCopy hands all unclaimed tables to one batch. Their rows are
// copied whole, apart from the location restriction.
func (e *Extractor) remainderCopy(ctx context.Context, p *plan) error {
	names, rest := p.tables.ClaimAll()
	p.tables = rest

	tasks := make([]subset.CopyTask, len(names))
	for i, v := range names {
		tasks[i] = subset.NewCopyTask(
			subset.RemainderCopy, v, e.locationFilter(p, v),
		)
	}

	counts, err := e.runCopies(ctx, subset.RemainderCopy, tasks)
	if err != nil {
		return err
	}
	slog.Info("Remaining tables copied",
		"tables", len(tasks), "rows", humanize.Comma(sum(counts)))
	return nil
}

// closureFilter selects rows that reference any root already in the
// target through any of their columns.
func (e *Extractor) closureFilter(p *plan, table string) subset.Filter {
	var fs []subset.Filter
	for _, r := range p.roots {
		for _, col := range p.closures[r.Table].ByTable()[table] {
			fs = append(fs, subset.InTarget(col, e.st.Target, r.Table, r.Key))
		}
	}
	return subset.And(subset.Or(fs...), e.locationFilter(p, table))
}

// locationFilter limits rows to configured locations when restriction is
// on and the table references location.
func (e *Extractor) locationFilter(p *plan, table string) subset.Filter {
	if !e.cfg.Extract.RestrictByLocation {
		return ""
	}
	var fs []subset.Filter
	for _, col := range p.locations.ByTable()[table] {
		fs = append(fs, subset.InIDs(col, e.cfg.Extract.LocationIDs))
	}
	return subset.Or(fs...)
}

// parentColumns returns columns of table that reference parent(key).
// Closures of roots are reused when they were built for the same key.
func (e *Extractor) parentColumns(
	ctx context.Context,
	p *plan,
	table, parent, key string,
) ([]string, error) {
	refs, ok := p.closures[parent]
	if !ok || e.strategies.Lookup(parent).Key != key {
		var err error
		refs, err = e.resolver.ReferencingTables(ctx, parent, key, p.skipped()...)
		if err != nil {
			return nil, err
		}
	}
	return refs.ByTable()[table], nil
}

func sum(counts map[string]int64) int64 {
	var res int64
	for _, v := range counts {
		res += v
	}
	return res
}

// inTarget keeps references of tables that exist in the target.
func (e *Extractor) inTarget(refs schema.References) []schema.TableReference {
	var res []schema.TableReference
	for _, r := range refs.Sorted() {
		if e.ledger.has(r.Table) {
			res = append(res, r)
		}
	}
	return res
}
