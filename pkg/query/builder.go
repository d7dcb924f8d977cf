package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

type condition struct {
	clause string
	args   []any
}

// Builder compiles document queries to SQL with automatic parameter numbering.
// The first validation error encountered is held and returned by Build.
type Builder struct {
	projection *ProjectionMap
	idField    string
	conditions []condition
	sort       *Sort
	limit      PageSize
	after      *Anchor
	err        error
}

// NewBuilder creates a Builder for the given projection.
// idField is the view name of the document id column used for tie-breaking and cursors.
func NewBuilder(projection *ProjectionMap, idField string) *Builder {
	return &Builder{
		projection: projection,
		idField:    idField,
		conditions: make([]condition, 0),
	}
}

// WhereEquals adds an equality condition on a projected column. No-op for nil values.
func (b *Builder) WhereEquals(viewName string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(viewName)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", col),
		args:   []any{value},
	})
	return b
}

// WhereField adds a filter condition on a document field.
func (b *Builder) WhereField(f Filter) *Builder {
	if err := ValidateField(f.Field); err != nil {
		b.fail(err)
		return b
	}
	if f.Op != OpEqual {
		b.fail(fmt.Errorf("%w: unsupported operator %q on %s", ErrInvalid, f.Op, f.Field))
		return b
	}

	raw, err := json.Marshal(f.Value)
	if err != nil {
		b.fail(fmt.Errorf("%w: encode value for %s: %v", ErrInvalid, f.Field, err))
		return b
	}

	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d::jsonb", b.projection.Field(f.Field)),
		args:   []any{string(raw)},
	})
	return b
}

// OrderBy sorts by a document field. Documents without the field are excluded.
// A nil sort keeps default ordering by id.
func (b *Builder) OrderBy(s *Sort) *Builder {
	if s == nil {
		return b
	}
	if err := ValidateField(s.Field); err != nil {
		b.fail(err)
		return b
	}

	b.sort = s
	b.conditions = append(b.conditions, condition{
		clause: b.projection.Field(s.Field) + " IS NOT NULL",
	})
	return b
}

// Limit bounds the number of returned rows. Unset and zero page sizes add no limit.
func (b *Builder) Limit(p PageSize) *Builder {
	if p.Value() < 0 {
		b.fail(fmt.Errorf("%w: negative page size %d", ErrInvalid, p.Value()))
		return b
	}
	b.limit = p
	return b
}

// StartAfter positions results strictly after the anchor in the active ordering.
// No-op for a nil anchor.
func (b *Builder) StartAfter(a *Anchor) *Builder {
	b.after = a
	return b
}

// Build returns the SELECT statement and its arguments.
func (b *Builder) Build() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	conditions := b.conditions
	if b.after != nil {
		cursor, err := b.cursorCondition()
		if err != nil {
			return "", nil, err
		}
		conditions = append(conditions[:len(conditions):len(conditions)], cursor)
	}

	where, args := buildWhere(conditions, 1)

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
	)

	if b.limit.Bounded() {
		sql += fmt.Sprintf(" LIMIT %d", b.limit.Value())
	}

	return sql, args, nil
}

func (b *Builder) cursorCondition() (condition, error) {
	idCol := b.projection.Column(b.idField)

	if b.sort == nil {
		return condition{
			clause: fmt.Sprintf("%s > $%%d", idCol),
			args:   []any{b.after.ID},
		}, nil
	}

	raw, err := json.Marshal(b.after.Value)
	if err != nil {
		return condition{}, fmt.Errorf("%w: encode cursor value: %v", ErrInvalid, err)
	}

	op := ">"
	if b.sort.Descending() {
		op = "<"
	}

	return condition{
		clause: fmt.Sprintf(
			"(%s, %s) %s ($%%d::jsonb, $%%d)",
			b.projection.Field(b.sort.Field), idCol, op,
		),
		args: []any{string(raw), b.after.ID},
	}, nil
}

func (b *Builder) buildOrderBy() string {
	idCol := b.projection.Column(b.idField)

	if b.sort == nil {
		return fmt.Sprintf(" ORDER BY %s ASC", idCol)
	}

	dir := "ASC"
	if b.sort.Descending() {
		dir = "DESC"
	}

	return fmt.Sprintf(
		" ORDER BY %s %s, %s %s",
		b.projection.Field(b.sort.Field), dir,
		idCol, dir,
	)
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func buildWhere(conditions []condition, startParam int) (string, []any) {
	if len(conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(conditions))
	args := make([]any, 0)
	paramIdx := startParam

	for _, cond := range conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}
