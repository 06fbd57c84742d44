package memory

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-course-platform/internal/domain/specification"
)

// matches evaluates one criterion against a column value.
func matches(value any, c specification.Criterion) (bool, error) {
	switch c.Op {
	case specification.OpEqual:
		return equal(value, c.Value), nil
	case specification.OpNotEqual:
		return !equal(value, c.Value), nil
	case specification.OpIn:
		values, ok := c.Value.([]any)
		if !ok {
			values = []any{c.Value}
		}
		for _, v := range values {
			if equal(value, v) {
				return true, nil
			}
		}
		return false, nil
	case specification.OpLike:
		pattern, ok := c.Value.(string)
		if !ok {
			return false, fmt.Errorf("like pattern for %s must be a string", c.Field)
		}
		s, ok := normalize(value).(string)
		if !ok {
			return false, nil
		}
		return likeRegexp(pattern).MatchString(s), nil
	case specification.OpGreater, specification.OpGreaterOrEqual, specification.OpLess, specification.OpLessOrEqual:
		n, ok := compare(value, c.Value)
		if !ok {
			// NULL and incomparable values never satisfy a range predicate
			return false, nil
		}
		switch c.Op {
		case specification.OpGreater:
			return n > 0, nil
		case specification.OpGreaterOrEqual:
			return n >= 0, nil
		case specification.OpLess:
			return n < 0, nil
		default:
			return n <= 0, nil
		}
	default:
		return false, fmt.Errorf("unsupported operator %q", c.Op)
	}
}

func equal(a, b any) bool {
	if n, ok := compare(a, b); ok {
		return n == 0
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// compare orders two column values. ok is false when they cannot be ordered
// against each other.
func compare(a, b any) (int, bool) {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		return 0, false
	}
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp(x, y), true
		case float64:
			return cmp(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmp(x, y), true
		case int64:
			return cmp(x, float64(y)), true
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return 0, false
}

func cmp[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// normalize folds numeric kinds together and dereferences pointers so
// int columns compare with int64 arguments and *time.Time with time.Time.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case uuid.UUID:
		return x.String()
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	return v
}

// likeRegexp translates a LIKE pattern: % is any run, _ is one character,
// matching is case-insensitive.
func likeRegexp(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}
