package dnd

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Serializer converts a payload value to the text stored in the data transfer.
type Serializer func(v any) (string, error)

// Deserializer converts payload text back to a value.
type Deserializer func(text string) (any, error)

// JSONSerializer encodes v as compact JSON without HTML escaping. Map keys
// are sorted.
func JSONSerializer(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// JSONDeserializer decodes JSON text. Numbers decode as float64.
func JSONDeserializer(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}
