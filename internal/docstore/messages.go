package docstore

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Message field names.
const (
	FieldCollection  = "collection"
	FieldKey         = "key"
	FieldData        = "data"
	FieldDocuments   = "documents"
	FieldDocument    = "document"
	FieldFound       = "found"
	FieldWrites      = "writes"
	FieldCount       = "count"
	FieldStatus      = "status"
	FieldProductCode = "productCode"
	FieldContentType = "contentType"
	FieldUploadURL   = "uploadUrl"
	FieldImageURL    = "imageUrl"
)

// Entry is one keyed document on the wire.
type Entry struct {
	Key  string
	Data map[string]any
}

// NewMessage builds a request or response message from plain Go values.
func NewMessage(fields map[string]any) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(normalize(fields).(map[string]any))
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return msg, nil
}

// EntriesValue converts entries into the list representation used by
// FetchAll and CommitBatch.
func EntriesValue(entries []Entry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{FieldKey: e.Key, FieldData: e.Data}
	}
	return out
}

// String returns a string field of msg or "".
func String(msg *structpb.Struct, name string) string {
	return msg.GetFields()[name].GetStringValue()
}

// Bool returns a bool field of msg or false.
func Bool(msg *structpb.Struct, name string) bool {
	return msg.GetFields()[name].GetBoolValue()
}

// Int returns a numeric field of msg truncated to int.
func Int(msg *structpb.Struct, name string) int {
	return int(msg.GetFields()[name].GetNumberValue())
}

// Map returns a struct field of msg as a Go map, or nil when absent.
func Map(msg *structpb.Struct, name string) map[string]any {
	s := msg.GetFields()[name].GetStructValue()
	if s == nil {
		return nil
	}
	return s.AsMap()
}

// Entries decodes the list field name of msg.
func Entries(msg *structpb.Struct, name string) ([]Entry, error) {
	list := msg.GetFields()[name].GetListValue()
	if list == nil {
		return nil, nil
	}
	out := make([]Entry, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%s[%d]: not an object", name, i)
		}
		key := String(s, FieldKey)
		if key == "" {
			return nil, fmt.Errorf("%s[%d]: missing key", name, i)
		}
		out = append(out, Entry{Key: key, Data: Map(s, FieldData)})
	}
	return out, nil
}

// normalize converts the typed slices and maps of Go code into the
// []any / map[string]any shapes structpb accepts.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	default:
		return v
	}
}
