// Package tbl builds SQL from a chain of data verbs. A Table is a lazy
// description of a query: verbs accumulate, SQL renders one SELECT, and
// Collect executes it through whatever can run queries (a pool or a
// single connection).
//
// Expressions are passed to the backend verbatim. The only rewriting
// tbl does is positional: every ? outside a quoted region becomes the
// dialect's parameter marker.
package tbl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dbkit/dialect"
)

// Executor runs a rendered query. *dbkit.Pool satisfies it.
type Executor interface {
	Select(ctx context.Context, dest interface{}, sql string, args ...interface{}) error
	Dialect() dialect.Dialect
}

// Table is an immutable query description. Verbs return a derived
// Table; the receiver is never modified, so intermediate stages can be
// reused as branch points.
type Table struct {
	exec Executor
	d    dialect.Dialect

	from    string
	depth   int
	cols    []string
	wheres  []string
	groups  []string
	orders  []string
	limit   int
	summary bool
	args    []interface{}

	err error
}

// From starts a query over a table name.
func From(exec Executor, name string) *Table {
	d := exec.Dialect()
	return &Table{
		exec:  exec,
		d:     d,
		from:  d.QuoteIdentifier(name),
		limit: -1,
	}
}

func (t *Table) clone() *Table {
	c := *t
	c.cols = append([]string(nil), t.cols...)
	c.wheres = append([]string(nil), t.wheres...)
	c.groups = append([]string(nil), t.groups...)
	c.orders = append([]string(nil), t.orders...)
	c.args = append([]interface{}(nil), t.args...)
	return &c
}

// wrap folds the accumulated stage into a derived-table FROM clause so
// the next verb starts clean. Placeholders stay as ? until the final
// render; args keep their order because inner args come first.
func (t *Table) wrap() *Table {
	c := t.clone()
	inner := c.render()
	c.from = "(" + inner + ") as t" + strconv.Itoa(c.depth+1)
	c.depth++
	c.cols = nil
	c.wheres = nil
	c.groups = nil
	c.orders = nil
	c.limit = -1
	c.summary = false
	return c
}

// staged reports whether the stage already shapes its output (it
// aggregated, ordered or limited), after which row-level verbs must
// apply to the output, not compose into the same SELECT.
func (t *Table) staged() bool {
	return t.summary || t.limit >= 0 || len(t.orders) > 0
}

// derive is the start of every verb: wrap the stage when the verb
// cannot compose onto it, otherwise branch off a copy.
func (t *Table) derive(mustWrap bool) *Table {
	if mustWrap {
		return t.wrap()
	}
	return t.clone()
}

// Filter keeps rows matching expr. Use ? for arguments. Filtering after
// Summarize, Mutate or Head wraps the stage so the condition can see
// the stage's output columns.
func (t *Table) Filter(expr string, args ...interface{}) *Table {
	c := t.derive(t.staged() || len(t.cols) > 0)
	c.wheres = append(c.wheres, expr)
	c.args = append(c.args, args...)
	return c
}

// Select keeps only the named columns (or column expressions, passed
// through verbatim).
func (t *Table) Select(cols ...string) *Table {
	c := t.derive(t.staged() || len(t.cols) > 0)
	c.cols = append(c.cols, cols...)
	return c
}

// Mutate adds a computed column named alias.
func (t *Table) Mutate(alias, expr string, args ...interface{}) *Table {
	c := t.derive(t.staged())
	if len(c.cols) == 0 {
		c.cols = append(c.cols, "*")
	}
	c.cols = append(c.cols, expr+" as "+c.d.QuoteIdentifier(alias))
	c.args = append(c.args, args...)
	return c
}

// GroupBy sets the grouping columns for a following Summarize.
func (t *Table) GroupBy(cols ...string) *Table {
	c := t.derive(t.staged() || len(t.cols) > 0)
	c.groups = append(c.groups, cols...)
	return c
}

// Summarize collapses the groups into aggregate expressions, each given
// verbatim with its alias ("count(*) as n"). The grouping columns lead
// the select list. Summarizing an already summarized stage wraps it.
func (t *Table) Summarize(aggs ...string) *Table {
	c := t.derive(t.staged() || (len(t.cols) > 0 && len(t.groups) == 0))
	c.cols = append([]string(nil), c.groups...)
	c.cols = append(c.cols, aggs...)
	c.summary = true
	return c
}

// Arrange orders the result ("population desc"). Arranging after Head
// wraps so the limit keeps its rows.
func (t *Table) Arrange(orders ...string) *Table {
	c := t.derive(t.limit >= 0)
	c.orders = append(c.orders, orders...)
	return c
}

// Head limits the result to the first n rows.
func (t *Table) Head(n int) *Table {
	c := t.clone()
	if n < 0 {
		c.err = fmt.Errorf("tbl: negative head %d", n)
		return c
	}
	if c.limit < 0 || n < c.limit {
		c.limit = n
	}
	return c
}

func (t *Table) render() string {
	var b strings.Builder
	b.WriteString("select ")
	if len(t.cols) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(t.cols, ", "))
	}
	b.WriteString(" from ")
	b.WriteString(t.from)
	if len(t.wheres) > 0 {
		b.WriteString(" where ")
		for i, w := range t.wheres {
			if i > 0 {
				b.WriteString(" and ")
			}
			b.WriteString("(")
			b.WriteString(w)
			b.WriteString(")")
		}
	}
	if len(t.groups) > 0 {
		b.WriteString(" group by ")
		b.WriteString(strings.Join(t.groups, ", "))
	}
	if len(t.orders) > 0 {
		b.WriteString(" order by ")
		b.WriteString(strings.Join(t.orders, ", "))
	}
	if t.limit >= 0 {
		b.WriteString(" limit ")
		b.WriteString(strconv.Itoa(t.limit))
	}
	return b.String()
}

// SQL renders the query with the dialect's parameter markers and
// returns the arguments in marker order.
func (t *Table) SQL() (string, []interface{}, error) {
	if t.err != nil {
		return "", nil, t.err
	}
	sql, n := numberPlaceholders(t.render(), t.d)
	if n != len(t.args) {
		return "", nil, fmt.Errorf("tbl: %d placeholders for %d args", n, len(t.args))
	}
	return sql, t.args, nil
}

// Collect renders the query, executes it and scans all rows into dest,
// a pointer to a slice.
func (t *Table) Collect(ctx context.Context, dest interface{}) error {
	sql, args, err := t.SQL()
	if err != nil {
		return err
	}
	return t.exec.Select(ctx, dest, sql, args...)
}

// numberPlaceholders rewrites each ? outside quoted regions to the
// dialect's 1-based marker and reports how many it saw.
func numberPlaceholders(sql string, d dialect.Dialect) (string, int) {
	var b strings.Builder
	b.Grow(len(sql))

	n := 0
	var quote byte
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			b.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
			b.WriteByte(ch)
		case ch == '?':
			n++
			b.WriteString(d.Placeholder(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), n
}
