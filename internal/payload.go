package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// PayloadKind discriminates the shapes a response body can take
type PayloadKind int

const (
	PayloadEmpty PayloadKind = iota
	PayloadText
	PayloadArray
	PayloadObject
	PayloadScalar
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadEmpty:
		return "empty"
	case PayloadText:
		return "text"
	case PayloadArray:
		return "array"
	case PayloadObject:
		return "object"
	case PayloadScalar:
		return "scalar"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is one member of a JSON object, kept in document order
type Field struct {
	Key   string
	Value json.RawMessage
}

// Payload is a decoded response body. Exactly one of Array, Object or Text
// is meaningful, as selected by Kind.
type Payload struct {
	Kind   PayloadKind
	Array  []json.RawMessage
	Object []Field
	Text   string
	Raw    []byte
}

// DecodePayload classifies a response body. Anything that is not valid JSON
// becomes a text payload.
func DecodePayload(body []byte) Payload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Payload{Kind: PayloadEmpty, Raw: body}
	}
	if !json.Valid(trimmed) {
		return Payload{Kind: PayloadText, Text: string(body), Raw: body}
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Payload{Kind: PayloadText, Text: string(body), Raw: body}
		}
		return Payload{Kind: PayloadArray, Array: items, Raw: body}
	case '{':
		fields, err := decodeOrderedObject(trimmed)
		if err != nil {
			return Payload{Kind: PayloadText, Text: string(body), Raw: body}
		}
		return Payload{Kind: PayloadObject, Object: fields, Raw: body}
	default:
		return Payload{Kind: PayloadScalar, Text: string(trimmed), Raw: body}
	}
}

// decodeOrderedObject walks the top-level object with a token decoder so the
// member order of the document survives.
func decodeOrderedObject(data []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	fields := make([]Field, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = upsertField(fields, key, value)
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return fields, nil
}

// upsertField keeps the first position of a key but the last value, which is
// how JSON.parse treats duplicate keys.
func upsertField(fields []Field, key string, value json.RawMessage) []Field {
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, Field{Key: key, Value: value})
}

// Get returns the raw value of an object member
func (p Payload) Get(key string) (json.RawMessage, bool) {
	if p.Kind != PayloadObject {
		return nil, false
	}
	for _, f := range p.Object {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns an object member when it is a JSON string
func (p Payload) String(key string) (string, bool) {
	raw, ok := p.Get(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Bool returns an object member when it is a JSON boolean
func (p Payload) Bool(key string) (bool, bool) {
	raw, ok := p.Get(key)
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// Decode unmarshals the whole body into v
func (p Payload) Decode(v interface{}) error {
	if p.Kind == PayloadEmpty || p.Kind == PayloadText {
		return fmt.Errorf("payload is %s, not JSON", p.Kind)
	}
	return json.Unmarshal(p.Raw, v)
}
