// Package querybuilder renders postgres statements with numbered
// placeholders. It covers what the repositories need and no more.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and the args bound to its $n placeholders.
type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes a fragment where each '?' binds the next arg. Surplus '?'
// characters are written as-is.
func (w *sqlWriter) expr(fragment string, args []any) {
	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(args) {
			w.bind(args[next])
			next++
			continue
		}
		w.WriteByte(fragment[i])
	}
}

func (w *sqlWriter) join(items []string) {
	w.WriteString(strings.Join(items, ", "))
}

func (w *sqlWriter) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.WriteString(" AND ")
		}
		c.writeSQL(w)
	}
}

type Condition interface {
	writeSQL(w *sqlWriter)
}

type conditionFunc func(w *sqlWriter)

func (f conditionFunc) writeSQL(w *sqlWriter) { f(w) }

func compare(column, op string, value any) Condition {
	return conditionFunc(func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(op)
		w.bind(value)
	})
}

func Eq(column string, value any) Condition  { return compare(column, " = ", value) }
func Gte(column string, value any) Condition { return compare(column, " >= ", value) }
func Lte(column string, value any) Condition { return compare(column, " <= ", value) }

func IsNull(column string) Condition {
	return conditionFunc(func(w *sqlWriter) { w.WriteString(column + " IS NULL") })
}

func IsNotNull(column string) Condition {
	return conditionFunc(func(w *sqlWriter) { w.WriteString(column + " IS NOT NULL") })
}

// Contains matches rows whose column contains value, case-insensitively.
// LIKE wildcards in value are matched literally.
func Contains(column, value string) Condition {
	return compare(column, " ILIKE ", "%"+likeEscaper.Replace(value)+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Expr is a raw condition; '?' placeholders bind args.
func Expr(fragment string, args ...any) Condition {
	return conditionFunc(func(w *sqlWriter) { w.expr(fragment, args) })
}

// Or joins conditions with OR inside parentheses. No conditions match nothing.
func Or(conditions ...Condition) Condition {
	return conditionFunc(func(w *sqlWriter) {
		if len(conditions) == 0 {
			w.WriteString("1=0")
			return
		}
		w.WriteString("(")
		for i, c := range conditions {
			if i > 0 {
				w.WriteString(" OR ")
			}
			c.writeSQL(w)
		}
		w.WriteString(")")
	})
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string

	// pgvector cosine distance ordering
	nearestColumn string
	nearestTo     any

	limit int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// NearestTo ranks rows by cosine distance between column and vector, adds a
// "similarity" column (1 - distance) and skips rows without an embedding.
func (b *SelectBuilder) NearestTo(column string, vector any) *SelectBuilder {
	b.nearestColumn = column
	b.nearestTo = vector
	return b.Where(IsNotNull(column))
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errors.New("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errors.New("select table is required")
	}

	var w sqlWriter
	w.WriteString("SELECT ")
	w.join(b.columns)
	if b.nearestColumn != "" {
		w.WriteString(", 1 - (" + b.nearestColumn + " <=> ")
		w.bind(b.nearestTo)
		w.WriteString(") AS similarity")
	}
	w.WriteString(" FROM " + b.table)
	w.where(b.where)

	switch {
	case b.nearestColumn != "":
		w.WriteString(" ORDER BY " + b.nearestColumn + " <=> ")
		w.bind(b.nearestTo)
		for _, part := range b.orderBy {
			w.WriteString(", " + part)
		}
	case len(b.orderBy) > 0:
		w.WriteString(" ORDER BY ")
		w.join(b.orderBy)
	}
	if b.limit > 0 {
		w.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	return w.String(), w.args, nil
}

type assignment struct {
	column string
	value  any
	now    bool
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// Touch sets column to the database clock.
func (b *UpdateBuilder) Touch(column string) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, now: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to render an UPDATE without a WHERE clause.
func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errors.New("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, errors.New("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, errors.New("update without where is not allowed")
	}

	var w sqlWriter
	w.WriteString("UPDATE " + b.table + " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(s.column + " = ")
		if s.now {
			w.WriteString("NOW()")
			continue
		}
		w.bind(s.value)
	}
	w.where(b.where)
	return w.String(), w.args, nil
}
