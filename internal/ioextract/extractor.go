// Package ioextract implements the Extractor. It walks the extraction
// phases and runs independent copy tasks of each phase on a bounded
// worker pool. Every batch is a hard barrier: the next phase starts only
// after all tasks of the previous one committed.
package ioextract

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/db"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/lifecycle"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

const (
	locationTable = "location"
	locationKey   = "location_id"
)

// Extractor copies a referentially consistent subset of the source
// database into a new target database.
type Extractor struct {
	cfg        *config.Config
	root       subset.RootFilter
	op         db.Operator
	resolver   *schema.Resolver
	copier     subset.Copier
	dumper     lifecycle.Dumper
	strategies *subset.Strategies
	st         subset.Statements

	runID        string
	jobs         int
	showProgress bool

	mu     sync.Mutex
	phase  subset.Phase
	ledger *ledger
}

// Option configures an Extractor.
type Option func(*Extractor)

// OptStrategies replaces the default OpenMRS strategy table.
func OptStrategies(s *subset.Strategies) Option {
	return func(e *Extractor) {
		if s != nil {
			e.strategies = s
		}
	}
}

// OptRunID sets the id written to the run report.
func OptRunID(id string) Option {
	return func(e *Extractor) {
		e.runID = id
	}
}

// OptProgress turns progress bars on or off.
func OptProgress(b bool) Option {
	return func(e *Extractor) {
		e.showProgress = b
	}
}

// New creates an Extractor. The root filter must be rendered already, so
// that a bad query file is reported before anything is created.
func New(
	cfg *config.Config,
	root subset.RootFilter,
	op db.Operator,
	in schema.Introspector,
	cp subset.Copier,
	dm lifecycle.Dumper,
	opts ...Option,
) *Extractor {
	res := &Extractor{
		cfg:        cfg,
		root:       root,
		op:         op,
		resolver:   schema.NewResolver(in),
		copier:     cp,
		dumper:     dm,
		strategies: subset.DefaultStrategies(),
		st: subset.Statements{
			Source: cfg.Database.Database,
			Target: cfg.Extract.NewDatabase,
		},
		jobs:         max(cfg.JobsNumber, 1),
		showProgress: true,
		ledger:       newLedger(),
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Phase returns the phase the run has reached.
func (e *Extractor) Phase() subset.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Extractor) setPhase(p subset.Phase) {
	e.mu.Lock()
	e.phase = p
	e.mu.Unlock()
	slog.Debug("Extraction phase", "phase", p)
}

// Extract runs all phases. The target database is created only after the
// configuration and the source schema were checked. Once it exists,
// cleanup and the run report happen regardless of the outcome.
func (e *Extractor) Extract(ctx context.Context) error {
	start := time.Now()
	target := e.cfg.Extract.NewDatabase
	e.ledger = newLedger()
	e.setPhase(subset.Init)

	slog.Info("Starting extraction",
		"source", e.cfg.Database.Database,
		"target", target,
		"locations", e.cfg.Extract.LocationIDs,
		"end_date", e.cfg.EndDateOr(start),
	)
	gn.Info("Extracting subset of <em>%s</em> into <em>%s</em>",
		e.cfg.Database.Database, target)

	p, err := e.prepare(ctx)
	if err != nil {
		e.setPhase(subset.Failed)
		return err
	}

	if err = e.op.CreateDatabase(ctx, target); err != nil {
		e.setPhase(subset.Failed)
		return err
	}

	err = e.run(ctx, p)

	var dumpFile string
	if err == nil {
		dumpFile = e.dump(ctx)
	}

	return e.finish(ctx, start, dumpFile, err)
}

// prepare validates run parameters, checks that the target is new and
// splits source tables into generic and special ones.
func (e *Extractor) prepare(ctx context.Context) (*plan, error) {
	if err := e.cfg.CheckExtract(); err != nil {
		return nil, err
	}

	target := e.cfg.Extract.NewDatabase
	exists, err := e.op.DatabaseExists(ctx, target)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, TargetExistsError(target)
	}

	tables, err := e.resolver.Introspector().ListTables(ctx)
	if err != nil {
		return nil, err
	}

	p := newPlan(e.cfg, tables)
	owned := slices.DeleteFunc(e.strategies.Tables(), func(t string) bool {
		return e.orphanSecondary(p.tables, t)
	})
	p.special, p.tables = p.tables.Claim(owned...)

	var rootNames []string
	for _, r := range e.strategies.Of(subset.Root) {
		rootNames = append(rootNames, r.Table)
		if p.isSpecial(r.Table) {
			p.roots = append(p.roots, r)
		}
	}
	if len(p.roots) == 0 {
		return nil, NoRootError(e.cfg.Database.Database, rootNames)
	}

	slog.Info("Source schema",
		"tables", len(tables),
		"generic", p.tables.Len(),
		"special", len(p.special),
		"structure_only", len(p.structure),
		"excluded", len(p.excluded),
	)
	return p, nil
}

// orphanSecondary reports whether a table is only owned as the secondary
// of bridges that are absent from the source. Such tables stay generic.
func (e *Extractor) orphanSecondary(ts subset.TableSet, table string) bool {
	if e.strategies.Lookup(table).Strategy != subset.Generic {
		return false
	}
	for _, r := range e.strategies.Of(subset.Bridge) {
		if r.Secondary == table && ts.Has(r.Table) {
			return false
		}
	}
	return true
}

func (e *Extractor) run(ctx context.Context, p *plan) error {
	steps := []struct {
		phase subset.Phase
		msg   string
		run   func(context.Context, *plan) error
	}{
		{subset.StructureCopy, "Copying structure-only tables", e.structureCopy},
		{subset.RootCopy, "Copying root entities", e.rootCopy},
		{subset.ClosureDiscovery, "Discovering referencing tables", e.discoverClosures},
		{subset.ClosureCopy, "Copying referencing tables", e.closureCopy},
		{subset.SpecialCasePhases, "Copying special tables", e.specialCases},
		{subset.RemainderCopy, "Copying remaining tables", e.remainderCopy},
		{subset.AccountPhase, "Copying user accounts", e.accounts},
	}

	for i, s := range steps {
		if err := checkCancelled(ctx, s.phase); err != nil {
			return err
		}
		e.setPhase(s.phase)
		stepStart := time.Now()
		slog.Info(fmt.Sprintf("Step %d/%d: %s", i+1, len(steps), s.msg))
		if err := s.run(ctx, p); err != nil {
			return err
		}
		slog.Info(fmt.Sprintf("Step %d/%d: Complete", i+1, len(steps)),
			"duration", gnfmt.TimeString(time.Since(stepStart).Seconds()))
	}
	return nil
}

// dump exports the target. Dump failures are logged and do not fail the
// run, the returned path is empty when no file was written.
func (e *Extractor) dump(ctx context.Context) string {
	if e.cfg.Extract.SkipDump || e.dumper == nil {
		slog.Info("Dump is skipped")
		return ""
	}
	e.setPhase(subset.Dump)

	path, err := e.dumper.Dump(ctx, e.cfg.Extract.NewDatabase)
	if err != nil {
		slog.Error("Dump failed", "error", err)
		gn.Warn("Dump of <em>%s</em> failed, see logs for details",
			e.cfg.Extract.NewDatabase)
		return path
	}
	gn.Info("Dump is saved to <em>%s</em>", path)
	return path
}

// finish drops the target if requested, writes the run report and
// summarizes the run. Cleanup uses a context that survives cancellation
// of the run.
func (e *Extractor) finish(
	ctx context.Context,
	start time.Time,
	dumpFile string,
	runErr error,
) error {
	target := e.cfg.Extract.NewDatabase
	failedAt := e.Phase()

	var dropped bool
	if e.cfg.Extract.DropTargetAfter {
		e.setPhase(subset.Cleanup)
		err := e.op.DropDatabase(context.WithoutCancel(ctx), target)
		if err != nil {
			slog.Error("Cannot drop target database",
				"database", target, "error", err)
			if runErr == nil {
				runErr = err
			}
		} else {
			dropped = true
			slog.Info("Target database dropped", "database", target)
		}
	}

	final := subset.Done
	if runErr != nil {
		final = subset.Failed
	}
	e.setPhase(final)

	dur := time.Since(start)
	rows, total := e.ledger.snapshot()
	rep := Report{
		RunID:          e.runID,
		SourceDatabase: e.cfg.Database.Database,
		TargetDatabase: target,
		LocationIDs:    e.cfg.Extract.LocationIDs,
		EndDate:        e.cfg.EndDateOr(start),
		Phase:          final,
		StartedAt:      start,
		Duration:       gnfmt.TimeString(dur.Seconds()),
		DumpFile:       dumpFile,
		Dropped:        dropped,
		TotalRows:      total,
		Rows:           rows,
	}
	if runErr != nil {
		rep.FailedAt = failedAt.String()
		rep.Error = runErr.Error()
	}

	path := ReportPath(e.cfg.Extract.DumpDir, dumpFile, target, start)
	if err := WriteReport(path, rep); err != nil {
		slog.Warn("Cannot write run report", "error", err)
	} else {
		slog.Info("Run report is saved", "path", path)
	}

	if runErr != nil {
		slog.Error("Extraction failed",
			"phase", failedAt,
			"duration", gnfmt.TimeString(dur.Seconds()),
			"error", runErr,
		)
		return runErr
	}

	slog.Info("Extraction completed",
		"rows", total,
		"tables", len(rows),
		"duration", gnfmt.TimeString(dur.Seconds()),
	)
	gn.Info("Copied <em>%s</em> rows of <em>%d</em> tables in %s",
		humanize.Comma(total), len(rows), gnfmt.TimeString(dur.Seconds()))
	return nil
}
