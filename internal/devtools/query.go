package devtools

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/purdah/internal/event/topic"
)

// Redacted replaces payload fields removed by ExportRedacted.
const Redacted = "[redacted]"

// OfType accepts entries whose event type matches one of patterns.
func OfType(patterns ...topic.Topic) func(Entry) bool {
	set := topic.Patterns(patterns)
	return func(e Entry) bool {
		return set.Any(topic.Topic(e.EventType))
	}
}

// Where accepts entries whose JSON payload holds value at path. Paths use
// gjson syntax, for example "kind" or "items.0.id".
func Where(path, value string) func(Entry) bool {
	return func(e Entry) bool {
		if e.Payload == nil {
			return false
		}
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return false
		}
		res := gjson.GetBytes(data, path)
		return res.Exists() && res.String() == value
	}
}

// All accepts entries accepted by every filter.
func All(filters ...func(Entry) bool) func(Entry) bool {
	return func(e Entry) bool {
		for _, f := range filters {
			if f != nil && !f(e) {
				return false
			}
		}
		return true
	}
}

// ExportRedacted writes the history like Export with each payload path
// replaced by Redacted. Missing paths are left alone.
func (r *Recorder) ExportRedacted(w io.Writer, paths ...string) error {
	entries := r.Entries()
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	for i := range entries {
		for _, p := range paths {
			key := fmt.Sprintf("%d.payload.%s", i, p)
			if !gjson.GetBytes(data, key).Exists() {
				continue
			}
			if data, err = sjson.SetBytes(data, key, Redacted); err != nil {
				return fmt.Errorf("redact %s: %w", key, err)
			}
		}
	}

	_, err = w.Write(pretty.Pretty(data))
	return err
}
