// Package schema maps catalogue entities onto flat column lists so every
// repository backend can share one description of each table.
package schema

import (
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
)

// Row is satisfied by pgx.Row and pgx.Rows.
type Row interface {
	Scan(dest ...any) error
}

// Table describes one entity table. Columns[0] is the primary key and
// Values must return one value per column in the same order.
type Table[E repository.Entity[K], K comparable] struct {
	Name    string
	Columns []string
	Values  func(E) []any
	Scan    func(Row) (E, error)
}

// Key is the primary key column.
func (t Table[E, K]) Key() string { return t.Columns[0] }

// Index returns the position of column, or -1.
func (t Table[E, K]) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (t Table[E, K]) Has(column string) bool { return t.Index(column) >= 0 }

// Value returns e's value for column. It panics for unknown columns; callers
// validate with Has first.
func (t Table[E, K]) Value(e E, column string) any {
	return t.Values(e)[t.Index(column)]
}
