// Package query builds document queries: a declarative Description of filters,
// sort, page size and cursor, its resolution into a Plan, and compilation of
// the plan to SQL against a JSONB document table.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references (alias.column)
// and names the JSONB column that holds document fields.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	document   string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		alias:      alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project adds a column mapping from database column to view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Document projects the JSONB column holding document fields under viewName
// and makes it the target of Field lookups.
func (p *ProjectionMap) Document(column, viewName string) *ProjectionMap {
	p.document = fmt.Sprintf("%s.%s", p.alias, column)
	return p.Project(column, viewName)
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the fully qualified table reference with alias (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Field returns the JSONB path expression for a document field.
// The name must already be validated as an identifier.
func (p *ProjectionMap) Field(name string) string {
	return fmt.Sprintf("%s->'%s'", p.document, name)
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// ColumnList returns all mapped columns as a slice.
func (p *ProjectionMap) ColumnList() []string {
	return p.columnList
}
