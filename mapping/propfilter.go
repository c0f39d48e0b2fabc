package mapping

import (
	"fmt"
)

// propOp enumerates the comparison a PropFilter renders.
type propOp int

const (
	opValue propOp = iota
	opValueNot
	opValueIn
	opValueNotIn
	opStartsWith
	opEndsWith
	opContains
	opStartsWithCI
	opEndsWithCI
	opContainsCI
	opNotStartsWith
	opNotEndsWith
	opNotContains
	opNotStartsWithCI
	opNotEndsWithCI
	opNotContainsCI
)

// PropFilter expresses a single comparison against a named property on a
// named graph variable. T is typically string or float64; the string-only
// operators (StartsWith etc.) are only meaningful when T is string.
type PropFilter[T any] struct {
	op       propOp
	value    T
	values   []T
	isSet    bool
}

// Value builds an equality PropFilter.
func Value[T any](v T) PropFilter[T] { return PropFilter[T]{op: opValue, value: v, isSet: true} }

// ValueNot builds an inequality PropFilter.
func ValueNot[T any](v T) PropFilter[T] { return PropFilter[T]{op: opValueNot, value: v, isSet: true} }

// ValueIn builds a membership PropFilter.
func ValueIn[T any](vs []T) PropFilter[T] { return PropFilter[T]{op: opValueIn, values: vs, isSet: true} }

// ValueNotIn builds a non-membership PropFilter.
func ValueNotIn[T any](vs []T) PropFilter[T] {
	return PropFilter[T]{op: opValueNotIn, values: vs, isSet: true}
}

// StartsWith, EndsWith and Contains build string-prefix/suffix/substring
// filters; the CI variants are case-insensitive. Each has a negated form.
func StartsWith(v string) PropFilter[string]   { return PropFilter[string]{op: opStartsWith, value: v, isSet: true} }
func EndsWith(v string) PropFilter[string]     { return PropFilter[string]{op: opEndsWith, value: v, isSet: true} }
func Contains(v string) PropFilter[string]     { return PropFilter[string]{op: opContains, value: v, isSet: true} }
func StartsWithCI(v string) PropFilter[string] { return PropFilter[string]{op: opStartsWithCI, value: v, isSet: true} }
func EndsWithCI(v string) PropFilter[string]   { return PropFilter[string]{op: opEndsWithCI, value: v, isSet: true} }
func ContainsCI(v string) PropFilter[string]   { return PropFilter[string]{op: opContainsCI, value: v, isSet: true} }

func NotStartsWith(v string) PropFilter[string] {
	return PropFilter[string]{op: opNotStartsWith, value: v, isSet: true}
}
func NotEndsWith(v string) PropFilter[string] {
	return PropFilter[string]{op: opNotEndsWith, value: v, isSet: true}
}
func NotContains(v string) PropFilter[string] {
	return PropFilter[string]{op: opNotContains, value: v, isSet: true}
}
func NotStartsWithCI(v string) PropFilter[string] {
	return PropFilter[string]{op: opNotStartsWithCI, value: v, isSet: true}
}
func NotEndsWithCI(v string) PropFilter[string] {
	return PropFilter[string]{op: opNotEndsWithCI, value: v, isSet: true}
}
func NotContainsCI(v string) PropFilter[string] {
	return PropFilter[string]{op: opNotContainsCI, value: v, isSet: true}
}

// IsSet reports whether the filter carries a constraint at all (the zero
// value of PropFilter[T] is "no constraint").
func (f PropFilter[T]) IsSet() bool { return f.isSet }

// paramCounter hands out unique parameter names within a single query build so
// that repeated filters on the same variable/property don't collide.
type paramCounter struct{ n int }

func (c *paramCounter) next(prefix string) string {
	c.n++
	return fmt.Sprintf("%s%d", prefix, c.n)
}

// Render emits the WHERE fragment and parameter binding for this filter
// against `<variable>.<property>`. Returns an empty QueryPart when the
// filter is unset.
func (f PropFilter[T]) Render(counter *paramCounter, variable, property string) QueryPart {
	if !f.isSet {
		return NewQueryPart()
	}

	ref := variable + "." + property
	switch f.op {
	case opValue:
		p := counter.next(property)
		return WhereQuery(fmt.Sprintf("%s = $%s", ref, p)).Param(p, f.value)
	case opValueNot:
		p := counter.next(property)
		return WhereQuery(fmt.Sprintf("%s <> $%s", ref, p)).Param(p, f.value)
	case opValueIn:
		p := counter.next(property)
		return WhereQuery(fmt.Sprintf("%s IN $%s", ref, p)).Param(p, f.values)
	case opValueNotIn:
		p := counter.next(property)
		return WhereQuery(fmt.Sprintf("NOT %s IN $%s", ref, p)).Param(p, f.values)
	default:
		return f.renderString(counter, ref, property)
	}
}

func (f PropFilter[T]) renderString(counter *paramCounter, ref, property string) QueryPart {
	raw := any(f.value)
	s, ok := raw.(string)
	if !ok {
		// Non-string PropFilter used with a string-only operator: nothing to
		// render; callers should not construct this combination.
		return NewQueryPart()
	}

	p := counter.next(property)
	switch f.op {
	case opStartsWith:
		return WhereQuery(fmt.Sprintf("%s STARTS WITH $%s", ref, p)).Param(p, s)
	case opEndsWith:
		return WhereQuery(fmt.Sprintf("%s ENDS WITH $%s", ref, p)).Param(p, s)
	case opContains:
		return WhereQuery(fmt.Sprintf("%s CONTAINS $%s", ref, p)).Param(p, s)
	case opStartsWithCI:
		return WhereQuery(fmt.Sprintf("toLower(%s) STARTS WITH toLower($%s)", ref, p)).Param(p, s)
	case opEndsWithCI:
		return WhereQuery(fmt.Sprintf("toLower(%s) ENDS WITH toLower($%s)", ref, p)).Param(p, s)
	case opContainsCI:
		return WhereQuery(fmt.Sprintf("toLower(%s) CONTAINS toLower($%s)", ref, p)).Param(p, s)
	case opNotStartsWith:
		return WhereQuery(fmt.Sprintf("NOT %s STARTS WITH $%s", ref, p)).Param(p, s)
	case opNotEndsWith:
		return WhereQuery(fmt.Sprintf("NOT %s ENDS WITH $%s", ref, p)).Param(p, s)
	case opNotContains:
		return WhereQuery(fmt.Sprintf("NOT %s CONTAINS $%s", ref, p)).Param(p, s)
	case opNotStartsWithCI:
		return WhereQuery(fmt.Sprintf("NOT toLower(%s) STARTS WITH toLower($%s)", ref, p)).Param(p, s)
	case opNotEndsWithCI:
		return WhereQuery(fmt.Sprintf("NOT toLower(%s) ENDS WITH toLower($%s)", ref, p)).Param(p, s)
	case opNotContainsCI:
		return WhereQuery(fmt.Sprintf("NOT toLower(%s) CONTAINS toLower($%s)", ref, p)).Param(p, s)
	default:
		return NewQueryPart()
	}
}
