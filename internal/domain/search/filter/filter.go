// Package filter models restrictive query clauses: exact-match facets and
// numeric ranges combined with boolean must/must_not semantics. Restrictive
// clauses narrow result membership without contributing to relevance.
package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per clause group.
const MaxConditionsPerGroup = 64

// Expression is a structured restrictive filter with must/must_not semantics.
// Scoring clauses live in the query package, not here.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// And returns a copy of e with extra must conditions appended.
func (e Expression) And(conds ...Condition) Expression {
	out := Expression{
		must:    append(append([]Condition{}, e.must...), conds...),
		mustNot: e.mustNot,
	}
	return out
}

// AndNot returns a copy of e with extra must_not conditions appended.
func (e Expression) AndNot(conds ...Condition) Expression {
	out := Expression{
		must:    e.must,
		mustNot: append(append([]Condition{}, e.mustNot...), conds...),
	}
	return out
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// Condition is a single restrictive clause: a tag match (one value or
// any-of several), a numeric range, or an all-of tag subset requirement.
type Condition struct {
	key       string
	values    []string
	allOf     bool
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, values: []string{value}}, nil
}

// NewAnyOf creates a tag condition matching documents carrying any of values.
func NewAnyOf(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	return Condition{key: key, values: values}, nil
}

// NewAllOf creates a tag condition matching documents carrying every value.
// Used for color-identity subset checks.
func NewAllOf(key string, values []string) (Condition, error) {
	c, err := NewAnyOf(key, values)
	if err != nil {
		return Condition{}, err
	}
	c.allOf = true
	return c, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the tag values.
func (c Condition) Values() []string { return c.values }

// AllOf reports whether every value must match (vs any).
func (c Condition) AllOf() bool { return c.allOf }

// Range returns the numeric range expression, or nil.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a tag condition.
func (c Condition) IsMatch() bool { return len(c.values) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with independently open or closed bounds.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeBounds validates and creates a Range. At least one boundary is
// required; gt/gte and lt/lte are mutually exclusive.
func NewRangeBounds(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Between builds a closed [min, max] range; either bound may be nil.
func Between(min, max *float64) (Range, error) {
	return NewRangeBounds(nil, min, nil, max)
}

// AtMost builds a closed upper-bounded range.
func AtMost(max float64) Range {
	r, _ := NewRangeBounds(nil, nil, nil, &max)
	return r
}

// GT returns the exclusive lower bound, or nil.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the inclusive lower bound, or nil.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the exclusive upper bound, or nil.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the inclusive upper bound, or nil.
func (r Range) LTE() *float64 { return r.lte }
