package query

import (
	"fmt"
	"regexp"
	"strings"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Operator is a filter comparison. Only equality is supported.
type Operator string

// OpEqual matches documents whose field equals the filter value.
const OpEqual Operator = "=="

// Filter is a single (field, operator, value) condition.
// Filters in a Description are conjunctive.
type Filter struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// Equals is shorthand for an equality Filter.
func Equals(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("%w: unknown sort direction %q", ErrInvalid, s)
}

// Sort orders results by a single document field.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Descending reports whether the sort runs from greatest to least.
func (s Sort) Descending() bool {
	return s.Direction == Descending
}

// PageSize distinguishes an unset page size from an explicit zero.
// Both unset and zero mean unbounded; a positive value limits the page.
type PageSize struct {
	n   int
	set bool
}

// Unbounded returns an unset PageSize.
func Unbounded() PageSize {
	return PageSize{}
}

// Size returns an explicitly set PageSize of n.
func Size(n int) PageSize {
	return PageSize{n: n, set: true}
}

// IsSet reports whether a page size was given explicitly.
func (p PageSize) IsSet() bool {
	return p.set
}

// Value returns the page size, or zero when unset.
func (p PageSize) Value() int {
	return p.n
}

// Bounded reports whether a limit clause applies.
func (p PageSize) Bounded() bool {
	return p.set && p.n > 0
}

func (p PageSize) String() string {
	switch {
	case !p.set:
		return "unset"
	case p.n == 0:
		return "0"
	}
	return fmt.Sprintf("%d", p.n)
}

// Description declares a filtered, sorted, paged read against one collection.
// Cursor is the id of the last document of the previous page.
type Description struct {
	Collection string
	Filters    []Filter
	Sort       *Sort
	PageSize   PageSize
	Cursor     string
}

// Validate checks the description for structural errors.
func (d Description) Validate() error {
	if d.Collection == "" {
		return fmt.Errorf("%w: collection required", ErrInvalid)
	}

	for _, f := range d.Filters {
		if err := ValidateField(f.Field); err != nil {
			return err
		}
		if f.Op != OpEqual {
			return fmt.Errorf("%w: unsupported operator %q on %s", ErrInvalid, f.Op, f.Field)
		}
	}

	if d.Sort != nil {
		if err := ValidateField(d.Sort.Field); err != nil {
			return err
		}
		if d.Sort.Direction != Ascending && d.Sort.Direction != Descending {
			return fmt.Errorf("%w: unknown sort direction %q", ErrInvalid, d.Sort.Direction)
		}
	}

	if d.PageSize.Value() < 0 {
		return fmt.Errorf("%w: negative page size %d", ErrInvalid, d.PageSize.Value())
	}

	return nil
}

// ValidateField reports ErrInvalid unless name is a simple identifier.
func ValidateField(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("%w: invalid field name %q", ErrInvalid, name)
	}
	return nil
}
