package ioextract

import (
	"context"
	"log/slog"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/dustin/go-humanize"
)

// specialCases runs self-referencing tables and then bridges, each in
// registration order and one at a time. Every table is followed by a
// backfill of the references it brought in.
func (e *Extractor) specialCases(ctx context.Context, p *plan) error {
	for _, r := range e.strategies.Of(subset.SelfReferencing) {
		if !p.isSpecial(r.Table) {
			continue
		}
		if err := checkCancelled(ctx, subset.SpecialCasePhases); err != nil {
			return err
		}
		if err := e.selfReferencing(ctx, p, r); err != nil {
			return err
		}
	}

	return e.bridges(ctx, p, subset.SpecialCasePhases)
}

// bridges runs every bridge rule. A backfill may bring parents that an
// earlier bridge has already passed, so passes repeat until one of them
// backfills nothing. Bridge statements skip copied rows.
func (e *Extractor) bridges(
	ctx context.Context,
	p *plan,
	phase subset.Phase,
) error {
	limit := e.cfg.Extract.MaxBackfillRounds
	for pass := 1; ; pass++ {
		before := p.backfilled
		for _, r := range e.strategies.Of(subset.Bridge) {
			if !p.isSpecial(r.Table) {
				continue
			}
			if err := checkCancelled(ctx, phase); err != nil {
				return err
			}
			if err := e.bridge(ctx, p, r, phase); err != nil {
				return err
			}
		}
		if p.backfilled == before {
			return nil
		}
		if pass > limit {
			return BackfillLimitError("bridges", limit)
		}
		slog.Info("Repeating bridges for backfilled rows", "pass", pass+1)
	}
}

// selfReferencing copies rows reachable through any column that references
// the parent. Columns are copied one after another, each statement skips
// rows an earlier column already brought, so a row is inserted once even
// when both its ends are in the target.
func (e *Extractor) selfReferencing(
	ctx context.Context,
	p *plan,
	r subset.Rule,
) error {
	target := e.st.Target
	cols, err := e.parentColumns(ctx, p, r.Table, r.Parent, r.ParentKey)
	if err != nil {
		return err
	}
	if len(cols) == 0 || !e.ledger.has(r.Parent) {
		slog.Warn("Nothing to copy into self-referencing table",
			"table", r.Table, "parent", r.Parent)
		return e.copyStructure(ctx, r.Table)
	}

	var total int64
	for _, col := range cols {
		if err = checkCancelled(ctx, subset.SpecialCasePhases); err != nil {
			return err
		}
		task := subset.NewCopyTask(subset.SpecialCasePhases, r.Table,
			subset.And(
				subset.NotCopied(target, r.Table, r.Key),
				subset.InTarget(col, target, r.Parent, r.ParentKey),
			),
		)
		n, err := e.copy(ctx, task)
		if err != nil {
			return err
		}
		total += n
	}
	slog.Info("Self-referencing table copied",
		"table", r.Table, "columns", cols, "rows", humanize.Comma(total))

	return e.backfill(ctx, p, r.Table)
}

// bridge copies rows whose parent is in the target, then the secondary
// entity rows that are not in the target yet. Both are backfilled.
func (e *Extractor) bridge(
	ctx context.Context,
	p *plan,
	r subset.Rule,
	phase subset.Phase,
) error {
	target := e.st.Target

	if e.ledger.has(r.Parent) {
		task := subset.NewCopyTask(phase, r.Table,
			subset.And(
				subset.NotCopied(target, r.Table, r.Key),
				subset.InTarget(r.ParentKey, target, r.Parent, r.ParentKey),
			),
		)
		n, err := e.copy(ctx, task)
		if err != nil {
			return err
		}
		slog.Info("Bridge table copied",
			"table", r.Table, "parent", r.Parent, "rows", humanize.Comma(n))
	} else {
		slog.Warn("Parent of bridge table is not in target",
			"table", r.Table, "parent", r.Parent)
		if err := e.copyStructure(ctx, r.Table); err != nil {
			return err
		}
	}

	sources := []string{r.Table}
	if r.Secondary != "" && p.isSpecial(r.Secondary) {
		task := subset.NewCopyTask(phase, r.Secondary,
			subset.And(
				subset.NotInTarget(r.SecondaryKey, target, r.Secondary, r.SecondaryKey),
				e.locationFilter(p, r.Secondary),
			),
		)
		task.Key = r.SecondaryKey
		n, err := e.copy(ctx, task)
		if err != nil {
			return err
		}
		slog.Info("Secondary table copied",
			"table", r.Secondary, "bridge", r.Table, "rows", humanize.Comma(n))
		sources = append(sources, r.Secondary)
	}

	for _, v := range sources {
		if err := e.backfill(ctx, p, v); err != nil {
			return err
		}
	}
	return nil
}
