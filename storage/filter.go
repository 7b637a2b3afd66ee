package storage

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Op is the kind of comparison a Condition performs.
type Op int

const (
	// OpEq matches records whose field equals Value.
	OpEq Op = iota + 1
	// OpRange matches records whose field lies in [Min, Max].
	OpRange
)

// Condition is one declarative predicate on a named field.
type Condition struct {
	Field string
	Op    Op
	Value any
	Min   any
	Max   any
}

// Eq matches records whose field equals v.
func Eq(field string, v any) Condition {
	return Condition{Field: field, Op: OpEq, Value: v}
}

// Flag matches records whose boolean field equals v.
func Flag(field string, v bool) Condition {
	return Condition{Field: field, Op: OpEq, Value: v}
}

// Between matches records with min <= field <= max.
func Between(field string, min, max any) Condition {
	return Condition{Field: field, Op: OpRange, Min: min, Max: max}
}

// Filter is a conjunction of conditions. The zero Filter matches everything.
type Filter struct {
	Conditions []Condition
}

// Where builds a Filter from conditions.
func Where(conditions ...Condition) Filter {
	return Filter{Conditions: conditions}
}

// Match reports whether r satisfies every condition.
func (f Filter) Match(r Record) (bool, error) {
	for _, c := range f.Conditions {
		v, ok := r.Field(c.Field)
		if !ok {
			return false, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, c.Field)
		}
		switch c.Op {
		case OpEq:
			n, err := compareValues(v, c.Value)
			if err != nil {
				return false, err
			}
			if n != 0 {
				return false, nil
			}
		case OpRange:
			lo, err := compareValues(v, c.Min)
			if err != nil {
				return false, err
			}
			hi, err := compareValues(v, c.Max)
			if err != nil {
				return false, err
			}
			if lo < 0 || hi > 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("%w: unknown operator %d", ErrInvalidQuery, c.Op)
		}
	}
	return true, nil
}

// Apply returns the records matching f, preserving their order.
func Apply[T Record](f Filter, records []T) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Score is a ranking expression: the product of the named numeric fields.
type Score struct {
	Factors []string
}

// Product builds a Score multiplying the given fields.
func Product(fields ...string) Score {
	return Score{Factors: fields}
}

// Eval computes the score of r.
func (s Score) Eval(r Record) (float64, error) {
	if len(s.Factors) == 0 {
		return 0, fmt.Errorf("%w: empty score expression", ErrInvalidQuery)
	}
	total := 1.0
	for _, name := range s.Factors {
		v, ok := r.Field(name)
		if !ok {
			return 0, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, name)
		}
		f, ok := toFloat(v)
		if !ok {
			return 0, fmt.Errorf("%w: field %q is not numeric", ErrInvalidQuery, name)
		}
		total *= f
	}
	return total, nil
}

// TopN ranks records by s descending, breaking ties by Key ascending, and
// keeps at most n of them.
func TopN[T Record](s Score, records []T, n int) ([]T, error) {
	type scored struct {
		rec   T
		score float64
	}

	ranked := make([]scored, len(records))
	for i, r := range records {
		v, err := s.Eval(r)
		if err != nil {
			return nil, err
		}
		ranked[i] = scored{rec: r, score: v}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.rec.Key(), b.rec.Key())
	})

	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]T, len(ranked))
	for i, r := range ranked {
		out[i] = r.rec
	}
	return out, nil
}

func compareValues(a, b any) (int, error) {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0, nil
			}
			if !av {
				return -1, nil
			}
			return 1, nil
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	default:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if aok && bok {
			return cmp.Compare(af, bf), nil
		}
	}
	return 0, fmt.Errorf("%w: cannot compare %T with %T", ErrInvalidQuery, a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
