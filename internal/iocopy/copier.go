// Package iocopy copies table structure and rows from the source into
// the target database with INSERT ... SELECT statements. Both databases
// live on the same MySQL server, so rows never leave it.
package iocopy

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/dustin/go-humanize"
)

type copier struct {
	db    *sql.DB
	st    subset.Statements
	batch int64
}

// New creates a Copier that uses connections from db. The source is the
// configured database, the target is the new database of the run.
func New(db *sql.DB, cfg *config.Config) subset.Copier {
	return &copier{
		db: db,
		st: subset.Statements{
			Source: cfg.Database.Database,
			Target: cfg.Extract.NewDatabase,
		},
		batch: int64(cfg.Database.BatchSize),
	}
}

// CopyStructure creates the table in the target if it does not exist.
func (c *copier) CopyStructure(ctx context.Context, table string) error {
	conn, err := c.conn(ctx, table)
	if err != nil {
		return err
	}
	defer conn.Close()

	return c.ensureStructure(ctx, conn, table)
}

// Copy copies rows selected by the task in one transaction on a dedicated
// connection. Large row sets are split into key ranges of batch size.
// Every selected row is inserted exactly once, otherwise the task fails.
// On failure the transaction is rolled back.
func (c *copier) Copy(ctx context.Context, task subset.CopyTask) (int64, error) {
	conn, err := c.conn(ctx, task.Table)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	// DDL commits implicitly in MySQL, it has to run before the transaction.
	if err = c.ensureStructure(ctx, conn, task.Table); err != nil {
		return 0, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, ConnectionError(task.Table, err)
	}

	count, err := c.copyRows(ctx, tx, task)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("Rollback failed", "table", task.Table,
				"phase", task.Phase, "error", rbErr)
		}
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, CommitError(task, err)
	}

	slog.Debug("Copied rows",
		"table", task.Table,
		"phase", task.Phase,
		"rows", humanize.Comma(count),
	)
	return count, nil
}

func (c *copier) copyRows(
	ctx context.Context,
	tx *sql.Tx,
	task subset.CopyTask,
) (int64, error) {
	q := c.st.Count(task)
	var total int64
	if err := tx.QueryRowContext(ctx, q).Scan(&total); err != nil {
		logFailure(task, q, err)
		return 0, CountError(task, q, err)
	}
	if total == 0 {
		return 0, nil
	}

	var copied int64
	var err error
	if total > c.batch && c.batch > 0 {
		slog.Debug("Copying in batches",
			"table", task.Table,
			"rows", humanize.Comma(total),
			"batches", subset.Batches(total, c.batch),
		)
		copied, err = c.copyPages(ctx, tx, task)
	} else {
		copied, err = c.exec(ctx, tx, task, c.st.Copy(task))
	}
	if err != nil {
		return 0, err
	}

	if copied != total {
		err = MismatchError(task, total, copied)
		slog.Error("Copied rows do not match counted rows",
			"table", task.Table,
			"phase", task.Phase,
			"counted", total,
			"copied", copied,
		)
		return 0, err
	}
	return copied, nil
}

// copyPages finds the last key of every page before inserting it, so each
// statement copies a closed key range that earlier pages cannot change.
func (c *copier) copyPages(
	ctx context.Context,
	tx *sql.Tx,
	task subset.CopyTask,
) (int64, error) {
	var copied int64
	page := subset.FirstPage(c.batch)
	for {
		q := c.st.PageEnd(task, page)
		var last sql.NullInt64
		if err := tx.QueryRowContext(ctx, q).Scan(&last); err != nil {
			logFailure(task, q, err)
			return 0, CountError(task, q, err)
		}
		if !last.Valid {
			return copied, nil
		}

		n, err := c.exec(ctx, tx, task, c.st.CopyPage(task, page, last.Int64))
		if err != nil {
			return 0, err
		}
		copied += n
		page = page.Next(last.Int64)
	}
}

func (c *copier) exec(
	ctx context.Context,
	tx *sql.Tx,
	task subset.CopyTask,
	q string,
) (int64, error) {
	slog.Debug("Running SQL statement", "table", task.Table, "sql", q)
	res, err := tx.ExecContext(ctx, q)
	if err != nil {
		logFailure(task, q, err)
		return 0, InsertError(task, q, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, InsertError(task, q, err)
	}
	return n, nil
}

func (c *copier) conn(ctx context.Context, table string) (*sql.Conn, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, ConnectionError(table, err)
	}

	if _, err = conn.ExecContext(ctx, "SET foreign_key_checks=0"); err != nil {
		conn.Close()
		return nil, ConnectionError(table, err)
	}
	return conn, nil
}

func (c *copier) ensureStructure(
	ctx context.Context,
	conn *sql.Conn,
	table string,
) error {
	q := c.st.ShowCreate(table)
	var name, ddl string
	if err := conn.QueryRowContext(ctx, q).Scan(&name, &ddl); err != nil {
		return StructureError(table, q, err)
	}

	q = c.st.CreateInTarget(ddl)
	if _, err := conn.ExecContext(ctx, q); err != nil {
		return StructureError(table, q, err)
	}
	return nil
}

func logFailure(task subset.CopyTask, q string, err error) {
	slog.Error("Copy statement failed",
		"table", task.Table,
		"phase", task.Phase,
		"sql", q,
		"error", err,
	)
}
