package docstore

import "time"

// Collection names used by the storefront backend.
const (
	CollectionProducts = "products"
	CollectionOrders   = "orders"
	CollectionUsers    = "user"
	CollectionDebts    = "debts"
)

// Timestamp is the tagged representation of a backend-native timestamp.
// Store adapters are the only producers of this type; everything above the
// docstore boundary sees either a Timestamp or the ISO string Normalize
// rewrites it to. Business logic must never shape-sniff raw maps for
// seconds/nanoseconds fields.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// TimestampOf converts a time.Time into a tagged Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time returns the timestamp as a UTC time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanoseconds)).UTC()
}

// ISO8601 renders the timestamp as a plain UTC ISO-8601 string with
// millisecond precision, e.g. "2023-11-14T22:13:20.000Z".
func (t Timestamp) ISO8601() string {
	return t.Time().Format("2006-01-02T15:04:05.000Z")
}

// Document is a decoded record from a named collection. Field values are
// plain Go values: string, float64, int64, bool, Timestamp, nested
// map[string]any and []any.
type Document struct {
	ID     string
	Fields map[string]any
}

// String returns the named field as a string, or "" when absent or not a
// string.
func (d Document) String(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// Float returns the named field as a float64, accepting any numeric encoding
// the backends produce.
func (d Document) Float(key string) float64 {
	switch v := d.Fields[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int returns the named field as an int, accepting any numeric encoding.
func (d Document) Int(key string) int {
	return int(d.Float(key))
}

// Bool returns the named field as a bool plus whether the field was present
// as a bool at all. Callers that fall back to sentinel conventions need the
// presence bit.
func (d Document) Bool(key string) (value, present bool) {
	v, ok := d.Fields[key].(bool)
	return v, ok
}

// Timestamp returns the named field as a tagged Timestamp, accepting the ISO
// string form as well. ok is false when the field holds neither.
func (d Document) Timestamp(key string) (Timestamp, bool) {
	switch v := d.Fields[key].(type) {
	case Timestamp:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return TimestampOf(t), true
		}
	}
	return Timestamp{}, false
}

// TimeString returns the named field rendered as an ISO-8601 string, or ""
// when the field is absent.
func (d Document) TimeString(key string) string {
	if ts, ok := d.Timestamp(key); ok {
		return ts.ISO8601()
	}
	return d.String(key)
}

// Normalized returns a copy of the document with every Timestamp value,
// however deeply nested, rewritten to its ISO-8601 string. Consumers of
// normalized documents never observe a raw timestamp shape.
func (d Document) Normalized() Document {
	fields, _ := Normalize(d.Fields).(map[string]any)
	return Document{ID: d.ID, Fields: fields}
}

// Normalize recursively rewrites Timestamp values inside maps and slices
// into ISO-8601 strings, returning the rewritten value.
func Normalize(v any) any {
	switch val := v.(type) {
	case Timestamp:
		return val.ISO8601()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	default:
		return v
	}
}
