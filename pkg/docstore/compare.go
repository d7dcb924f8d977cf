package docstore

import (
	"cmp"
	"encoding/json"
	"strings"
)

// rank follows the jsonb type order: null < string < number < boolean < array < object.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case int64, float64:
		return 2
	case bool:
		return 3
	case []any:
		return 4
	}
	return 5
}

// compareValues orders two decoded field values the way the postgres driver does.
// Strings compare bytewise, matching the "C" collation of documents.id.
func compareValues(a, b any) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}

	switch av := a.(type) {
	case nil:
		return 0
	case string:
		return strings.Compare(av, b.(string))
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
		return cmp.Compare(toFloat(a), toFloat(b))
	case float64:
		return cmp.Compare(av, toFloat(b))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case []any:
		// jsonb orders arrays by length before elements
		bv := b.([]any)
		if c := cmp.Compare(len(av), len(bv)); c != 0 {
			return c
		}
		for i := range av {
			if c := compareValues(av[i], bv[i]); c != 0 {
				return c
			}
		}
		return 0
	case Timestamp:
		if bv, ok := b.(Timestamp); ok {
			return av.Compare(bv)
		}
	}

	return strings.Compare(canonical(a), canonical(b))
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func canonical(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
