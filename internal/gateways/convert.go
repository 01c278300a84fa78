// Package gateways implements the Repository Gateways: per-entity-type
// accessors that translate domain objects in internal/models to and from
// graph.Record, holding a non-owning *graph.Client. Gateways never call
// each other — composition happens in internal/ops.
package gateways

import (
	"encoding/json"
	"time"

	"github.com/kodegraph/membank/internal/graph"
)

// timeLayout is the wire format for every timestamp property. Both engines
// store/return timestamps as strings through the params map and Record,
// so gateways own the parse/format boundary rather than pushing time.Time
// through a driver-specific conversion.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// recordTime reads a timestamp property out of a Record.
func recordTime(rec graph.Record, key string) time.Time {
	return parseTime(rec.String(key))
}

// encodeList JSON-encodes a string slice for storage in a single TEXT/
// string property, matching the way Metadata.Content and File.Metrics
// already carry JSON payloads in a plain property.
func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
