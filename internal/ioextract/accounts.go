package ioextract

import (
	"context"
	"log/slog"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/dustin/go-humanize"
)

// accounts copies every account that a copied row references, then the
// rows that belong to accounts. Accounts bring their persons through
// backfill, and those persons may point to more accounts, so harvesting
// repeats until no account is missing. Persons brought by accounts may
// have encounters or programs, bridges run again for them.
func (e *Extractor) accounts(ctx context.Context, p *plan) error {
	before := p.backfilled
	for _, a := range e.strategies.Of(subset.Account) {
		if !p.isSpecial(a.Table) {
			continue
		}
		if err := e.account(ctx, p, a); err != nil {
			return err
		}
	}
	if p.backfilled == before {
		return nil
	}
	return e.bridges(ctx, p, subset.AccountPhase)
}

func (e *Extractor) account(ctx context.Context, p *plan, a subset.Rule) error {
	target := e.st.Target

	var deps []subset.Rule
	excluded := p.skipped()
	for _, d := range e.strategies.Of(subset.AccountDependent) {
		if d.Parent == a.Table {
			excluded = append(excluded, d.Table)
			if p.isSpecial(d.Table) {
				deps = append(deps, d)
			}
		}
	}

	refs, err := e.resolver.ReferencingTables(ctx, a.Table, a.Key, excluded...)
	if err != nil {
		return err
	}
	self, err := e.resolver.SelfReferences(ctx, a.Table, a.Key)
	if err != nil {
		return err
	}
	for _, col := range self {
		refs.Add(schema.TableReference{Table: a.Table, Column: col})
	}

	// harvest queries need the account table in the target
	if err = e.copyStructure(ctx, a.Table); err != nil {
		return err
	}

	limit := e.cfg.Extract.MaxBackfillRounds
	for round := 1; ; round++ {
		if err = checkCancelled(ctx, subset.AccountPhase); err != nil {
			return err
		}
		harvest := e.inTarget(refs)
		if len(harvest) == 0 {
			break
		}
		ids, err := e.op.QueryIDs(ctx, e.st.Missing(harvest, a.Table, a.Key))
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}
		if round > limit {
			return BackfillLimitError(a.Table, limit)
		}

		task := subset.NewCopyTask(subset.AccountPhase, a.Table,
			subset.And(
				subset.InIDs(a.Key, ids),
				subset.NotCopied(target, a.Table, a.Key),
			),
		)
		n, err := e.copy(ctx, task)
		if err != nil {
			return err
		}
		slog.Info("Accounts copied",
			"table", a.Table,
			"round", round,
			"referenced", len(ids),
			"rows", humanize.Comma(n),
		)

		if err = e.backfill(ctx, p, a.Table); err != nil {
			return err
		}
	}

	tasks := make([]subset.CopyTask, len(deps))
	for i, d := range deps {
		tasks[i] = subset.NewCopyTask(subset.AccountPhase, d.Table,
			subset.InTarget(d.Key, target, d.Parent, d.ParentKey),
		)
	}
	counts, err := e.runCopies(ctx, subset.AccountPhase, tasks)
	if err != nil {
		return err
	}
	for _, d := range deps {
		slog.Info("Account rows copied",
			"table", d.Table, "rows", humanize.Comma(counts[d.Table]))
	}
	return nil
}
