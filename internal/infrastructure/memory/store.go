// Package memory is an in-process repository backend. It follows the
// postgres backend's semantics so either can sit behind the catalogue.
package memory

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

// Store holds every table. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tables map[string]any
}

func NewStore() *Store {
	return &Store{tables: map[string]any{}}
}

// rows keeps insertion order so unordered reads are repeatable.
type rows[E repository.Entity[K], K comparable] struct {
	order []K
	items map[K]E
}

// peek returns the table's rows, or nil if nothing was ever written to it.
// s.mu must be held for reading.
func peek[E repository.Entity[K], K comparable](s *Store, t schema.Table[E, K]) *rows[E, K] {
	r, _ := s.tables[t.Name].(*rows[E, K])
	return r
}

// tableOf returns the table's rows, creating them on first use.
// s.mu must be held for writing.
func tableOf[E repository.Entity[K], K comparable](s *Store, t schema.Table[E, K]) *rows[E, K] {
	if r, ok := s.tables[t.Name].(*rows[E, K]); ok {
		return r
	}
	r := &rows[E, K]{items: map[K]E{}}
	s.tables[t.Name] = r
	return r
}

func (r *rows[E, K]) insert(e E) {
	k := e.Key()
	r.order = append(r.order, k)
	r.items[k] = e
}

func (r *rows[E, K]) delete(k K) {
	delete(r.items, k)
	for i, v := range r.order {
		if v == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// restore puts k back at position i of the insertion order.
func (r *rows[E, K]) restore(i int, e E) {
	k := e.Key()
	r.items[k] = e
	r.order = append(r.order, k)
	copy(r.order[i+1:], r.order[i:])
	r.order[i] = k
}

func (r *rows[E, K]) position(k K) int {
	for i, v := range r.order {
		if v == k {
			return i
		}
	}
	return -1
}

func (r *rows[E, K]) snapshot() []E {
	if r == nil {
		return nil
	}
	out := make([]E, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.items[k])
	}
	return out
}

// columnsOnly rebuilds e from its column values, dropping included relations
// and copying pointer targets, the same way a database round trip would.
func columnsOnly[E repository.Entity[K], K comparable](t schema.Table[E, K], e E) (E, error) {
	return t.Scan(valuesRow(t.Values(e)))
}

type valuesRow []any

func (v valuesRow) Scan(dest ...any) error {
	if len(dest) != len(v) {
		return fmt.Errorf("memory: scan expects %d destinations, got %d", len(v), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("memory: destination %d is not a pointer", i)
		}
		target := dv.Elem()
		if v[i] == nil {
			target.SetZero()
			continue
		}
		src := reflect.ValueOf(v[i])
		if src.Kind() == reflect.Pointer {
			if src.IsNil() {
				target.SetZero()
				continue
			}
			cp := reflect.New(src.Elem().Type())
			cp.Elem().Set(src.Elem())
			src = cp
		}
		if !src.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("memory: cannot assign %s to %s", src.Type(), target.Type())
		}
		target.Set(src)
	}
	return nil
}
