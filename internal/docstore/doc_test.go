package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampISO8601(t *testing.T) {
	ts := Timestamp{Seconds: 1700000000, Nanoseconds: 0}
	assert.Equal(t, "2023-11-14T22:13:20.000Z", ts.ISO8601())

	ts = Timestamp{Seconds: 1700000000, Nanoseconds: 500000000}
	assert.Equal(t, "2023-11-14T22:13:20.500Z", ts.ISO8601())
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 30, 45, 123000000, time.UTC)
	ts := TimestampOf(now)
	assert.Equal(t, now, ts.Time())
}

func TestNormalizeRewritesNestedTimestamps(t *testing.T) {
	fields := map[string]any{
		"createdAt": Timestamp{Seconds: 1700000000},
		"status":    "pending",
		"address": map[string]any{
			"city":      "La Paz",
			"updatedAt": Timestamp{Seconds: 1700000000},
		},
		"items": []any{
			map[string]any{"addedAt": Timestamp{Seconds: 1700000000}, "quantity": 2},
		},
	}

	out, ok := Normalize(fields).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "2023-11-14T22:13:20.000Z", out["createdAt"])
	assert.Equal(t, "pending", out["status"])

	addr := out["address"].(map[string]any)
	assert.Equal(t, "La Paz", addr["city"])
	assert.Equal(t, "2023-11-14T22:13:20.000Z", addr["updatedAt"])

	item := out["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", item["addedAt"])
	assert.Equal(t, 2, item["quantity"])

	// The source document is untouched.
	_, isTimestamp := fields["createdAt"].(Timestamp)
	assert.True(t, isTimestamp)
}

func TestDocumentFieldHelpers(t *testing.T) {
	doc := Document{
		ID: "p1",
		Fields: map[string]any{
			"title":           "Vaso de vidrio",
			"price":           int64(25),
			"stock":           12,
			"hasStockControl": true,
		},
	}

	assert.Equal(t, "Vaso de vidrio", doc.String("title"))
	assert.Equal(t, "", doc.String("missing"))
	assert.Equal(t, 25.0, doc.Float("price"))
	assert.Equal(t, 12, doc.Int("stock"))

	value, present := doc.Bool("hasStockControl")
	assert.True(t, value)
	assert.True(t, present)

	_, present = doc.Bool("missing")
	assert.False(t, present)
}

func TestDocumentTimestampAcceptsISOStrings(t *testing.T) {
	doc := Document{Fields: map[string]any{
		"createdAt": "2023-11-14T22:13:20.000Z",
		"updatedAt": Timestamp{Seconds: 1700000000},
		"status":    "pending",
	}}

	ts, ok := doc.Timestamp("createdAt")
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), ts.Seconds)

	assert.Equal(t, "2023-11-14T22:13:20.000Z", doc.TimeString("updatedAt"))

	_, ok = doc.Timestamp("status")
	assert.False(t, ok)
}
