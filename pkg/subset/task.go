package subset

import (
	"context"
)

// CopyTask is one unit of copy work: rows of Table that satisfy Filter
// move from the source into the target database.
type CopyTask struct {
	Table  string
	Filter Filter

	// Key is the key column used to order paged copies. When empty the
	// <table>_id convention applies.
	Key string

	// Phase is the extraction phase that scheduled the task. It is used
	// in logs and error messages.
	Phase Phase
}

// NewCopyTask creates a CopyTask for a phase.
func NewCopyTask(phase Phase, table string, filter Filter) CopyTask {
	return CopyTask{Table: table, Filter: filter, Phase: phase}
}

// OrderColumn returns the column that orders rows of paged copies.
func (t CopyTask) OrderColumn() string {
	if t.Key != "" {
		return t.Key
	}
	return KeyColumn(t.Table)
}

// Copier executes copy tasks against the source and target databases.
type Copier interface {
	// CopyStructure creates the table in the target with the source
	// structure, if it does not exist yet. No rows are copied.
	CopyStructure(ctx context.Context, table string) error

	// Copy ensures the target structure and copies the filtered rows in
	// a single transaction. It returns the number of copied rows.
	Copy(ctx context.Context, task CopyTask) (int64, error)
}
