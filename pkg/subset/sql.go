package subset

import (
	"strconv"
	"strings"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
)

// Statements renders the SQL used to copy tables from Source into Target.
type Statements struct {
	Source string
	Target string
}

// ShowCreate returns the statement that reads the source DDL of a table.
func (s Statements) ShowCreate(table string) string {
	return "SHOW CREATE TABLE " + Qualified(s.Source, table)
}

// CreateInTarget rewrites a source DDL statement so that it creates the
// table in the target database if it does not exist yet.
func (s Statements) CreateInTarget(ddl string) string {
	return strings.Replace(ddl, "CREATE TABLE ",
		"CREATE TABLE IF NOT EXISTS "+Ident(s.Target)+".", 1)
}

// Count returns the statement that counts rows a task would copy.
func (s Statements) Count(task CopyTask) string {
	return "SELECT COUNT(*) FROM " + s.from(task)
}

// Copy returns a single statement copying all rows of a task.
func (s Statements) Copy(task CopyTask) string {
	return "INSERT INTO " + Qualified(s.Target, task.Table) +
		" (SELECT * FROM " + s.from(task) + ")"
}

// PageEnd returns a query for the largest key of a page of rows a task
// would copy. The result is NULL when no rows are left.
func (s Statements) PageEnd(task CopyTask, p Page) string {
	col := task.OrderColumn()
	return "SELECT MAX(p.k) FROM (SELECT t." + col + " AS k FROM " +
		s.fromWhere(task.Table, And(grouped(task.Filter), p.start(col))) +
		" ORDER BY t." + col +
		" LIMIT " + strconv.FormatInt(p.Size, 10) + ") AS p"
}

// CopyPage returns a statement copying rows of a page, up to and
// including the key last found by PageEnd.
func (s Statements) CopyPage(task CopyTask, p Page, last int64) string {
	col := task.OrderColumn()
	end := Filter("t." + col + " <= " + strconv.FormatInt(last, 10))
	return "INSERT INTO " + Qualified(s.Target, task.Table) +
		" (SELECT * FROM " +
		s.fromWhere(task.Table, And(grouped(task.Filter), p.start(col), end)) + ")"
}

func (s Statements) from(task CopyTask) string {
	return s.fromWhere(task.Table, task.Filter)
}

// grouped parenthesizes a filter that is extended with page bounds.
func grouped(f Filter) Filter {
	if f.IsEmpty() {
		return f
	}
	return Filter("(" + string(f) + ")")
}

func (s Statements) fromWhere(table string, f Filter) string {
	res := Qualified(s.Source, table) + " AS t"
	if !f.IsEmpty() {
		res += " WHERE " + string(f)
	}
	return res
}

// Missing returns a query for distinct values of referencing columns in
// the target that are absent from parent(parentKey) in the target.
// Every reference gives one SELECT, results are combined with UNION.
func (s Statements) Missing(
	refs []schema.TableReference,
	parent, parentKey string,
) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = "SELECT t." + r.Column + " FROM " +
			Qualified(s.Target, r.Table) + " AS t WHERE t." + r.Column +
			" IS NOT NULL AND " +
			string(NotInTarget(r.Column, s.Target, parent, parentKey))
	}
	return strings.Join(parts, " UNION ")
}
