// Package pagination drives cursor-paged lists: a Controller that owns the
// visible item list and merges or replaces it with fetched pages, and request
// parsing for cursor pagination over HTTP.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/cookbook/pkg/query"
)

// CursorRequest is a client request for one page after an optional cursor.
type CursorRequest struct {
	PageSize query.PageSize
	Cursor   string
}

// CursorRequestFromQuery parses page_size and cursor from URL query values.
// An absent page_size takes the configured default, an explicit 0 is unbounded,
// and sizes above the maximum are clamped. Malformed or negative sizes are
// reported as query.ErrInvalid.
func CursorRequestFromQuery(values url.Values, cfg Config) (CursorRequest, error) {
	req := CursorRequest{
		PageSize: query.Size(cfg.DefaultPageSize),
		Cursor:   values.Get("cursor"),
	}

	if !values.Has("page_size") {
		return req, nil
	}

	n, err := strconv.Atoi(values.Get("page_size"))
	if err != nil {
		return req, fmt.Errorf("%w: page_size %q", query.ErrInvalid, values.Get("page_size"))
	}
	if n < 0 {
		return req, fmt.Errorf("%w: negative page_size %d", query.ErrInvalid, n)
	}

	req.PageSize = query.Size(min(n, cfg.MaxPageSize))
	return req, nil
}
