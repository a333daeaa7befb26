package kvs

import gojson "github.com/goccy/go-json"

// JsonParser is the read-side collaborator contract (spec.md §6): raw bytes
// in, a generic JSON node out (map[string]any / []any / string / float64 /
// bool / nil, matching how the standard decoder surfaces JSON into `any`).
type JsonParser interface {
	Parse(data []byte) (any, error)
}

// JsonWriter is the write-side collaborator contract: a generic JSON node
// in, serialized bytes out. Used only by flush.
type JsonWriter interface {
	Write(v any) ([]byte, error)
}

// goccyCodec is the default JsonParser/JsonWriter, backed by goccy/go-json
// (a drop-in, faster encoding/json replacement).
type goccyCodec struct{}

// NewJSONCodec returns the default collaborator, usable as both a
// JsonParser and a JsonWriter.
func NewJSONCodec() *goccyCodec {
	return &goccyCodec{}
}

func (goccyCodec) Parse(data []byte) (any, error) {
	var v any
	if err := gojson.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (goccyCodec) Write(v any) ([]byte, error) {
	return gojson.Marshal(v)
}
