// Package specification describes queries declaratively. A Spec is data only:
// repositories interpret it, in the order filter, includes, ordering, paging.
package specification

// Operator is a comparison applied by a Criterion.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "<>"
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	// OpLike matches case-insensitively; % matches any run, _ one character.
	OpLike Operator = "LIKE"
	// OpIn expects a []any value.
	OpIn Operator = "IN"
)

// Criterion is a single filter predicate over a storage field.
type Criterion struct {
	Field string
	Op    Operator
	Value any
}

type Order struct {
	Field      string
	Descending bool
}

// Page is a (skip, take) window. Take <= 0 means no upper bound.
type Page struct {
	Skip int
	Take int
}

// Query is the entity-agnostic part of a Spec. Criteria are ANDed.
type Query struct {
	Criteria []Criterion
	Includes []string
	Order    *Order
	Page     *Page
}

// Spec is a Query bound to the entity type E so a course spec cannot be handed
// to an exam repository by mistake.
type Spec[E any] struct {
	Query
}

// Option mutates the query being built.
type Option func(*Query)

// New builds a Spec. An empty Spec means "all entities, unspecified order".
func New[E any](opts ...Option) Spec[E] {
	var q Query
	for _, opt := range opts {
		if opt != nil {
			opt(&q)
		}
	}
	return Spec[E]{Query: q}
}

// With returns a copy of s extended by opts; s itself is left untouched.
func (s Spec[E]) With(opts ...Option) Spec[E] {
	q := s.Query.clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&q)
		}
	}
	return Spec[E]{Query: q}
}

// IsEmpty reports whether the spec restricts nothing.
func (q Query) IsEmpty() bool {
	return len(q.Criteria) == 0 && len(q.Includes) == 0 && q.Order == nil && q.Page == nil
}

func (q Query) clone() Query {
	out := Query{
		Criteria: append([]Criterion(nil), q.Criteria...),
		Includes: append([]string(nil), q.Includes...),
	}
	if q.Order != nil {
		o := *q.Order
		out.Order = &o
	}
	if q.Page != nil {
		p := *q.Page
		out.Page = &p
	}
	return out
}

func Where(field string, op Operator, value any) Option {
	return func(q *Query) {
		q.Criteria = append(q.Criteria, Criterion{Field: field, Op: op, Value: value})
	}
}

func Equal(field string, value any) Option {
	return Where(field, OpEqual, value)
}

// Like filters with a case-insensitive pattern such as "%golang%".
func Like(field, pattern string) Option {
	return Where(field, OpLike, pattern)
}

func In(field string, values ...any) Option {
	return Where(field, OpIn, append([]any(nil), values...))
}

// Include asks for related data to be attached. Duplicates are ignored.
func Include(paths ...string) Option {
	return func(q *Query) {
		for _, p := range paths {
			if p == "" || contains(q.Includes, p) {
				continue
			}
			q.Includes = append(q.Includes, p)
		}
	}
}

// OrderBy replaces any previous ordering.
func OrderBy(field string) Option {
	return func(q *Query) { q.Order = &Order{Field: field} }
}

func OrderByDescending(field string) Option {
	return func(q *Query) { q.Order = &Order{Field: field, Descending: true} }
}

// Paginate replaces any previous window. Negative skip is treated as 0.
func Paginate(skip, take int) Option {
	return func(q *Query) {
		if skip < 0 {
			skip = 0
		}
		if take < 0 {
			take = 0
		}
		q.Page = &Page{Skip: skip, Take: take}
	}
}

// PageOf selects the 1-based page of the given size.
func PageOf(page, size int) Option {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		return Paginate(0, 0)
	}
	return Paginate((page-1)*size, size)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
