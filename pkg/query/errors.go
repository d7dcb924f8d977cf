package query

import "errors"

// ErrInvalid indicates a malformed query description: an unsupported operator,
// an invalid field name, a negative page size, or a cursor that does not resolve.
var ErrInvalid = errors.New("invalid query")
