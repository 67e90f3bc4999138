package models

import "time"

// Fields is the document body handed to a DocumentStore.
type Fields map[string]interface{}

type serverTimestamp struct{}

// ServerTimestamp marks a field the store must fill with its own write time.
var ServerTimestamp interface{} = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v interface{}) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Resolve returns a copy of f with every ServerTimestamp replaced by now (UTC).
func (f Fields) Resolve(now time.Time) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if IsServerTimestamp(v) {
			out[k] = now.UTC()
			continue
		}
		out[k] = v
	}
	return out
}
