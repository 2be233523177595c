package common

import "time"

// TimestampLayout is the wire format of every timestamp stored in documents.
const TimestampLayout = time.RFC3339Nano

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a document timestamp. Empty input yields nil.
func ParseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ResolveServerTimestamps returns a copy of data with every ServerTimestamp
// placeholder replaced by now.
func ResolveServerTimestamps(data map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok && s == ServerTimestamp {
			out[k] = FormatTimestamp(now)
			continue
		}
		out[k] = v
	}
	return out
}
