package recipes

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/cookbook/pkg/pagination"
	"github.com/JaimeStill/cookbook/pkg/query"
)

// Order is the list ordering. The empty Order uses backend-default id order.
type Order string

const (
	OrderNone            Order = ""
	OrderPublishDateDesc Order = "publishDateDesc"
	OrderPublishDateAsc  Order = "publishDateAsc"
)

// ParseOrder accepts publishDateDesc/desc, publishDateAsc/asc, or none.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "publishdatedesc", "desc":
		return OrderPublishDateDesc, nil
	case "publishdateasc", "asc":
		return OrderPublishDateAsc, nil
	case "none":
		return OrderNone, nil
	}
	return "", fmt.Errorf("%w: unknown order %q", ErrInvalidParams, s)
}

// Params is the list state a UI controls: category filter, ordering, page
// size, and whether unpublished recipes are hidden.
type Params struct {
	Category      *Category
	Order         Order
	PageSize      query.PageSize
	PublishedOnly bool
}

// DefaultParams lists every category, newest first, with pageSize recipes per page.
func DefaultParams(pageSize int) Params {
	return Params{
		Order:    OrderPublishDateDesc,
		PageSize: query.Size(pageSize),
	}
}

// WithCategory returns p filtered to c; nil clears the filter.
func (p Params) WithCategory(c *Category) Params {
	p.Category = c
	return p
}

// Describe builds the query description for one page after cursor.
// Filters are the category then the published flag; the sort is publishDate
// in the Order direction.
func (p Params) Describe(cursor string) query.Description {
	desc := query.Description{
		Collection: Collection,
		PageSize:   p.PageSize,
		Cursor:     cursor,
	}

	if p.Category != nil {
		desc.Filters = append(desc.Filters, query.Equals(FieldCategory, string(*p.Category)))
	}
	if p.PublishedOnly {
		desc.Filters = append(desc.Filters, query.Equals(FieldIsPublished, true))
	}

	switch p.Order {
	case OrderPublishDateDesc:
		desc.Sort = &query.Sort{Field: FieldPublishDate, Direction: query.Descending}
	case OrderPublishDateAsc:
		desc.Sort = &query.Sort{Field: FieldPublishDate, Direction: query.Ascending}
	}

	return desc
}

// Query encodes p and cursor as URL query values understood by ParamsFromQuery.
func (p Params) Query(cursor string) url.Values {
	values := url.Values{}
	if p.Category != nil {
		values.Set("category", string(*p.Category))
	}
	if p.Order == OrderNone {
		values.Set("order", "none")
	} else {
		values.Set("order", string(p.Order))
	}
	if p.PageSize.IsSet() {
		values.Set("page_size", strconv.Itoa(p.PageSize.Value()))
	}
	if cursor != "" {
		values.Set("cursor", cursor)
	}
	return values
}

// ParamsFromQuery parses category, order, page_size, and cursor. A missing
// order is newest first; category "all" or absent lists every category.
func ParamsFromQuery(values url.Values, cfg pagination.Config) (Params, string, error) {
	req, err := pagination.CursorRequestFromQuery(values, cfg)
	if err != nil {
		return Params{}, "", err
	}

	p := DefaultParams(cfg.DefaultPageSize)
	p.PageSize = req.PageSize

	if c := values.Get("category"); c != "" && c != "all" {
		cat, err := ParseCategory(c)
		if err != nil {
			return Params{}, "", err
		}
		p.Category = &cat
	}

	if values.Has("order") {
		o, err := ParseOrder(values.Get("order"))
		if err != nil {
			return Params{}, "", err
		}
		p.Order = o
	}

	return p, req.Cursor, nil
}
