package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

type statement struct {
	sql  string
	args []any
}

type builder struct {
	sb   strings.Builder
	args []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) statement() statement {
	return statement{sql: b.sb.String(), args: b.args}
}

var sqlOps = map[specification.Operator]string{
	specification.OpEqual:          "=",
	specification.OpNotEqual:       "<>",
	specification.OpGreater:        ">",
	specification.OpGreaterOrEqual: ">=",
	specification.OpLess:           "<",
	specification.OpLessOrEqual:    "<=",
	specification.OpLike:           "ILIKE",
}

// buildSelect renders q against t. Filter, ordering and paging are pushed
// into SQL; includes are resolved by the caller afterwards.
func buildSelect[E repository.Entity[K], K comparable](t schema.Table[E, K], q specification.Query) (statement, error) {
	var b builder
	b.sb.WriteString("SELECT ")
	b.sb.WriteString(strings.Join(t.Columns, ", "))
	b.sb.WriteString(" FROM ")
	b.sb.WriteString(t.Name)

	for i, c := range q.Criteria {
		if !t.Has(c.Field) {
			return statement{}, unknownField(t.Name, c.Field)
		}
		if i == 0 {
			b.sb.WriteString(" WHERE ")
		} else {
			b.sb.WriteString(" AND ")
		}
		if err := writeCriterion(&b, c); err != nil {
			return statement{}, err
		}
	}

	switch {
	case q.Order != nil:
		if !t.Has(q.Order.Field) {
			return statement{}, unknownField(t.Name, q.Order.Field)
		}
		b.sb.WriteString(" ORDER BY ")
		b.sb.WriteString(q.Order.Field)
		if q.Order.Descending {
			b.sb.WriteString(" DESC")
		}
		if q.Order.Field != t.Key() {
			b.sb.WriteString(", ")
			b.sb.WriteString(t.Key())
		}
	case q.Page != nil:
		// windows over an unordered set would not be repeatable
		b.sb.WriteString(" ORDER BY ")
		b.sb.WriteString(t.Key())
	}

	if q.Page != nil {
		b.sb.WriteString(" OFFSET ")
		b.sb.WriteString(b.arg(q.Page.Skip))
		if q.Page.Take > 0 {
			b.sb.WriteString(" LIMIT ")
			b.sb.WriteString(b.arg(q.Page.Take))
		}
	}
	return b.statement(), nil
}

func writeCriterion(b *builder, c specification.Criterion) error {
	if c.Op == specification.OpIn {
		values, ok := c.Value.([]any)
		if !ok {
			values = []any{c.Value}
		}
		if len(values) == 0 {
			b.sb.WriteString("FALSE")
			return nil
		}
		b.sb.WriteString(c.Field)
		b.sb.WriteString(" IN (")
		for i, v := range values {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			b.sb.WriteString(b.arg(v))
		}
		b.sb.WriteString(")")
		return nil
	}
	op, ok := sqlOps[c.Op]
	if !ok {
		return oops.With("operator", string(c.Op)).Errorf("unsupported operator")
	}
	fmt.Fprintf(&b.sb, "%s %s %s", c.Field, op, b.arg(c.Value))
	return nil
}

func buildSelectByKey[E repository.Entity[K], K comparable](t schema.Table[E, K], id K) statement {
	var b builder
	fmt.Fprintf(&b.sb, "SELECT %s FROM %s WHERE %s = %s",
		strings.Join(t.Columns, ", "), t.Name, t.Key(), b.arg(id))
	return b.statement()
}

func buildInsert[E repository.Entity[K], K comparable](t schema.Table[E, K], e E) statement {
	var b builder
	values := t.Values(e)
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = b.arg(v)
	}
	fmt.Fprintf(&b.sb, "INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(t.Columns, ", "), strings.Join(marks, ", "))
	return b.statement()
}

func buildUpdate[E repository.Entity[K], K comparable](t schema.Table[E, K], e E) statement {
	var b builder
	values := t.Values(e)
	sets := make([]string, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		sets = append(sets, t.Columns[i]+" = "+b.arg(values[i]))
	}
	fmt.Fprintf(&b.sb, "UPDATE %s SET %s WHERE %s = %s",
		t.Name, strings.Join(sets, ", "), t.Key(), b.arg(values[0]))
	return b.statement()
}

func buildDelete[E repository.Entity[K], K comparable](t schema.Table[E, K], e E) statement {
	var b builder
	fmt.Fprintf(&b.sb, "DELETE FROM %s WHERE %s = %s", t.Name, t.Key(), b.arg(e.Key()))
	return b.statement()
}

func unknownField(table, field string) error {
	return oops.With("table", table).With("field", field).Wrap(repository.ErrUnknownField)
}
