// Package query is a small typed filter language for the data store.
//
// A filter is an Expr tree built from Eq, Le, Ge, Between, Contains, And
// and Or. The Postgres store compiles it to a WHERE fragment with Compile;
// the in-memory store evaluates it against a Record with Match.
package query

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
)

type Op string

const (
	OpEq       Op = "eq"
	OpLe       Op = "le"
	OpGe       Op = "ge"
	OpBetween  Op = "between"
	OpContains Op = "contains"
	OpAnd      Op = "and"
	OpOr       Op = "or"
)

type Expr struct {
	Op       Op
	Field    string
	Values   []any
	Children []Expr
}

func Eq(field string, value any) Expr {
	return Expr{Op: OpEq, Field: field, Values: []any{value}}
}

func Le(field string, value any) Expr {
	return Expr{Op: OpLe, Field: field, Values: []any{value}}
}

func Ge(field string, value any) Expr {
	return Expr{Op: OpGe, Field: field, Values: []any{value}}
}

// Between is inclusive on both ends.
func Between(field string, low, high any) Expr {
	return Expr{Op: OpBetween, Field: field, Values: []any{low, high}}
}

// Contains matches string fields holding value as a substring.
func Contains(field string, value string) Expr {
	return Expr{Op: OpContains, Field: field, Values: []any{value}}
}

func And(exprs ...Expr) Expr {
	return Expr{Op: OpAnd, Children: exprs}
}

func Or(exprs ...Expr) Expr {
	return Expr{Op: OpOr, Children: exprs}
}

// All matches every record.
func All() Expr {
	return And()
}

var fieldName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Compile renders e as a Postgres boolean expression. Placeholders start
// at $start so the fragment can follow other bound arguments.
func Compile(e Expr, start int) (string, []any, error) {
	c := &compiler{next: start}
	sql, err := c.compile(e)
	if err != nil {
		return "", nil, err
	}
	return sql, c.args, nil
}

type compiler struct {
	next int
	args []any
}

func (c *compiler) bind(v any) string {
	c.args = append(c.args, normalize(v))
	p := fmt.Sprintf("$%d", c.next)
	c.next++
	return p
}

func (c *compiler) compile(e Expr) (string, error) {
	switch e.Op {
	case OpAnd, OpOr:
		if len(e.Children) == 0 {
			if e.Op == OpAnd {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		parts := make([]string, 0, len(e.Children))
		for _, child := range e.Children {
			sql, err := c.compile(child)
			if err != nil {
				return "", err
			}
			parts = append(parts, sql)
		}
		joiner := " AND "
		if e.Op == OpOr {
			joiner = " OR "
		}
		return "(" + strings.Join(parts, joiner) + ")", nil
	}

	if !fieldName.MatchString(e.Field) {
		return "", fmt.Errorf("invalid field name %q", e.Field)
	}

	switch e.Op {
	case OpEq:
		if err := arity(e, 1); err != nil {
			return "", err
		}
		if e.Values[0] == nil {
			return e.Field + " IS NULL", nil
		}
		return e.Field + " = " + c.bind(e.Values[0]), nil
	case OpLe:
		if err := arity(e, 1); err != nil {
			return "", err
		}
		return e.Field + " <= " + c.bind(e.Values[0]), nil
	case OpGe:
		if err := arity(e, 1); err != nil {
			return "", err
		}
		return e.Field + " >= " + c.bind(e.Values[0]), nil
	case OpBetween:
		if err := arity(e, 2); err != nil {
			return "", err
		}
		low := c.bind(e.Values[0])
		high := c.bind(e.Values[1])
		return e.Field + " BETWEEN " + low + " AND " + high, nil
	case OpContains:
		if err := arity(e, 1); err != nil {
			return "", err
		}
		return "position(" + c.bind(e.Values[0]) + " in " + e.Field + ") > 0", nil
	}

	return "", fmt.Errorf("unknown operator %q", e.Op)
}

func arity(e Expr, n int) error {
	if len(e.Values) != n {
		return fmt.Errorf("%s on %s expects %d value(s), got %d", e.Op, e.Field, n, len(e.Values))
	}
	return nil
}

// Record exposes named fields to Match. Field names are the store column
// names. Absent or nil fields never satisfy a comparison except Eq(nil).
type Record interface {
	Field(name string) (any, bool)
}

func Match(e Expr, r Record) bool {
	switch e.Op {
	case OpAnd:
		for _, child := range e.Children {
			if !Match(child, r) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range e.Children {
			if Match(child, r) {
				return true
			}
		}
		return false
	}

	raw, ok := r.Field(e.Field)
	if !ok {
		return false
	}
	value := deref(raw)

	switch e.Op {
	case OpEq:
		if len(e.Values) != 1 {
			return false
		}
		want := deref(e.Values[0])
		if want == nil || value == nil {
			return want == nil && value == nil
		}
		cmp, ok := compare(value, want)
		return ok && cmp == 0
	case OpLe:
		if len(e.Values) != 1 {
			return false
		}
		cmp, ok := compare(value, deref(e.Values[0]))
		return ok && cmp <= 0
	case OpGe:
		if len(e.Values) != 1 {
			return false
		}
		cmp, ok := compare(value, deref(e.Values[0]))
		return ok && cmp >= 0
	case OpBetween:
		if len(e.Values) != 2 {
			return false
		}
		lo, okLo := compare(value, deref(e.Values[0]))
		hi, okHi := compare(value, deref(e.Values[1]))
		return okLo && okHi && lo >= 0 && hi <= 0
	case OpContains:
		s, ok := value.(string)
		if !ok || len(e.Values) != 1 {
			return false
		}
		sub, ok := deref(e.Values[0]).(string)
		return ok && strings.Contains(s, sub)
	}
	return false
}

func deref(v any) any {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *int:
		if t == nil {
			return nil
		}
		return *t
	case *float64:
		if t == nil {
			return nil
		}
		return *t
	case *bool:
		if t == nil {
			return nil
		}
		return *t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	}
	return normalize(v)
}

// normalize unwraps named basic types such as challenge.Status so they
// compare like their underlying kind.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}

	af, ok := number(a)
	if !ok {
		return 0, false
	}
	bf, ok := number(b)
	if !ok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

func number(v any) (float64, bool) {
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
