package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	secondsKey = "_seconds"
	nanosKey   = "_nanoseconds"
)

// Timestamp is the stored form of a point in time.
// JSONB orders objects by their shorter key first, so stored timestamps
// compare by seconds, then nanoseconds.
type Timestamp struct {
	Seconds int64 `json:"_seconds"`
	Nanos   int64 `json:"_nanoseconds"`
}

// TimestampOf converts t to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int64(t.Nanosecond())}
}

// Time converts ts to UTC time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, ts.Nanos).UTC()
}

// Compare returns -1, 0 or 1 as ts is before, equal to, or after other.
func (ts Timestamp) Compare(other Timestamp) int {
	switch {
	case ts.Seconds < other.Seconds:
		return -1
	case ts.Seconds > other.Seconds:
		return 1
	case ts.Nanos < other.Nanos:
		return -1
	case ts.Nanos > other.Nanos:
		return 1
	}
	return 0
}

// storable replaces time values with Timestamps, recursing into maps and slices.
func storable(v any) any {
	switch val := v.(type) {
	case time.Time:
		return TimestampOf(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return TimestampOf(*val)
	case Fields:
		return storableMap(val)
	case map[string]any:
		return storableMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = storable(item)
		}
		return out
	}
	return v
}

func storableMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = storable(v)
	}
	return out
}

func encodeFields(fields Fields) ([]byte, error) {
	if fields == nil {
		fields = Fields{}
	}
	data, err := json.Marshal(storableMap(fields))
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

func decodeFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}

	fields := make(Fields, len(raw))
	for k, v := range raw {
		fields[k] = decodeValue(v)
	}
	return fields, nil
}

// normalize returns fields as they read back after a write.
func normalize(fields Fields) (Fields, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	return decodeFields(data)
}

func normalizeValue(v any) (any, error) {
	fields, err := normalize(Fields{"v": v})
	if err != nil {
		return nil, err
	}
	return fields["v"], nil
}

func decodeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		if ts, ok := asTimestamp(val); ok {
			return ts
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = decodeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = decodeValue(item)
		}
		return out
	}
	return v
}

func asTimestamp(m map[string]any) (Timestamp, bool) {
	if len(m) != 2 {
		return Timestamp{}, false
	}

	secs, ok := m[secondsKey].(json.Number)
	if !ok {
		return Timestamp{}, false
	}
	nanos, ok := m[nanosKey].(json.Number)
	if !ok {
		return Timestamp{}, false
	}

	s, err := secs.Int64()
	if err != nil {
		return Timestamp{}, false
	}
	n, err := nanos.Int64()
	if err != nil {
		return Timestamp{}, false
	}

	return Timestamp{Seconds: s, Nanos: n}, true
}
