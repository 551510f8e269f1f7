package subset

import (
	"slices"
	"strconv"
	"strings"
)

// Filter is a SQL predicate over a source table aliased as t. Filters are
// assembled only from catalog names, integer ids, the target database
// name and the rendered root query. An empty Filter selects all rows.
type Filter string

// IsEmpty reports whether the filter selects all rows.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(string(f)) == ""
}

func (f Filter) String() string {
	return string(f)
}

// Qualified returns a backtick-quoted database.table name.
func Qualified(database, table string) string {
	return Ident(database) + "." + Ident(table)
}

// Ident returns a backtick-quoted identifier.
func Ident(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// InTarget keeps rows whose column value is already a key of the parent
// table in the target database.
func InTarget(col, target, parent, parentKey string) Filter {
	return Filter("t." + col + " IN (SELECT " + parentKey + " FROM " +
		Qualified(target, parent) + ")")
}

// NotInTarget keeps rows whose column value is not yet a key of the
// parent table in the target database.
func NotInTarget(col, target, parent, parentKey string) Filter {
	return Filter("t." + col + " NOT IN (SELECT " + parentKey + " FROM " +
		Qualified(target, parent) + ")")
}

// NotCopied keeps rows of a table that are not in its target copy yet.
// It makes repeated copies into the same table insert every row once.
func NotCopied(target, table, key string) Filter {
	return NotInTarget(key, target, table, key)
}

// InRoot keeps rows whose column value is selected by the root query.
func InRoot(col string, root RootFilter) Filter {
	return Filter("t." + col + " IN (" + string(root) + ")")
}

// InIDs keeps rows whose column value is one of ids. Ids are sorted and
// deduplicated so equal sets give equal filters. No ids select no rows.
func InIDs[T ~int | ~int64](col string, ids []T) Filter {
	if len(ids) == 0 {
		return Filter("FALSE")
	}
	return Filter("t." + col + " IN (" + JoinIDs(ids) + ")")
}

// JoinIDs returns sorted distinct ids separated by commas.
func JoinIDs[T ~int | ~int64](ids []T) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(parts, ",")
}

// And joins non-empty filters so that all of them must hold.
func And(fs ...Filter) Filter {
	return join(" AND ", fs)
}

// Or joins non-empty filters so that any of them may hold. A result of
// several filters is parenthesized, so it can be nested into And safely.
func Or(fs ...Filter) Filter {
	parts := nonEmpty(fs)
	if len(parts) > 1 {
		return Filter("(" + strings.Join(parts, " OR ") + ")")
	}
	return Filter(strings.Join(parts, ""))
}

func join(sep string, fs []Filter) Filter {
	return Filter(strings.Join(nonEmpty(fs), sep))
}

func nonEmpty(fs []Filter) []string {
	res := make([]string, 0, len(fs))
	for _, v := range fs {
		if v.IsEmpty() {
			continue
		}
		res = append(res, string(v))
	}
	return res
}
