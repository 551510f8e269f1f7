package ioextract

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"golang.org/x/sync/errgroup"
)

// job is one independent unit of work of a batch.
type job struct {
	name string
	run  func(ctx context.Context) error
}

// runBatch runs mutually independent jobs on the bounded pool and waits
// for all of them. A failed job does not cancel its siblings, all errors
// are collected and returned after the batch completes.
func (e *Extractor) runBatch(
	ctx context.Context,
	phase subset.Phase,
	jobs []job,
) error {
	if len(jobs) == 0 {
		return nil
	}

	if err := checkCancelled(ctx, phase); err != nil {
		return err
	}

	bar := newProgressBar(len(jobs), phase.String()+" ", e.showProgress)

	var g errgroup.Group
	g.SetLimit(e.jobs)

	var mu sync.Mutex
	var errs []error
	for _, j := range jobs {
		g.Go(func() error {
			defer bar.Increment()
			if err := j.run(ctx); err != nil {
				slog.Error("Task failed",
					"phase", phase, "task", j.name, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	bar.Finish()

	switch len(errs) {
	case 0:
		if err := ctx.Err(); err != nil {
			return CancelledError(phase, err)
		}
		return nil
	case 1:
		return errs[0]
	default:
		return PhaseError(phase, len(errs), errors.Join(errs...))
	}
}

// runCopies runs copy tasks as one batch and returns the number of rows
// copied per table.
func (e *Extractor) runCopies(
	ctx context.Context,
	phase subset.Phase,
	tasks []subset.CopyTask,
) (map[string]int64, error) {
	var mu sync.Mutex
	counts := make(map[string]int64, len(tasks))

	jobs := make([]job, len(tasks))
	for i, t := range tasks {
		jobs[i] = job{
			name: t.Table,
			run: func(ctx context.Context) error {
				n, err := e.copy(ctx, t)
				if err != nil {
					return err
				}
				mu.Lock()
				counts[t.Table] += n
				mu.Unlock()
				return nil
			},
		}
	}

	err := e.runBatch(ctx, phase, jobs)
	return counts, err
}

// structureJobs creates jobs that copy table structure only.
func (e *Extractor) structureJobs(tables []string) []job {
	res := make([]job, len(tables))
	for i, t := range tables {
		res[i] = job{
			name: t,
			run: func(ctx context.Context) error {
				return e.copyStructure(ctx, t)
			},
		}
	}
	return res
}

// copy runs one task and records its rows. Tasks without a key get the
// key column of their strategy rule.
func (e *Extractor) copy(ctx context.Context, task subset.CopyTask) (int64, error) {
	if task.Key == "" {
		task.Key = e.strategies.Lookup(task.Table).Key
	}
	n, err := e.copier.Copy(ctx, task)
	if err != nil {
		return 0, err
	}
	e.ledger.copied(task.Table, n)
	return n, nil
}

func (e *Extractor) copyStructure(ctx context.Context, table string) error {
	if err := e.copier.CopyStructure(ctx, table); err != nil {
		return err
	}
	e.ledger.created(table)
	return nil
}

// checkCancelled is used between sequential steps of a phase.
func checkCancelled(ctx context.Context, phase subset.Phase) error {
	select {
	case <-ctx.Done():
		return CancelledError(phase, ctx.Err())
	default:
		return nil
	}
}
