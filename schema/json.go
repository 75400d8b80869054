// Package schema models JSON Schema object fragments while preserving
// the order of declared properties. Property order is observable by MCP
// clients, so schemas round-trip through an ordered representation
// instead of Go maps.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Property is one named entry in an object schema. The value is kept as
// raw JSON so arbitrarily nested schemas pass through untouched.
type Property struct {
	Name  string
	Value json.RawMessage
}

// Object is an ordered JSON Schema of type "object".
type Object struct {
	Type     string
	Props    []Property
	Required []string

	// AdditionalProperties holds the raw additionalProperties value if
	// the source declared one, nil otherwise.
	AdditionalProperties json.RawMessage

	// extra preserves unrecognized top-level members in source order.
	extra []Property
}

// NewObject returns an empty object schema.
func NewObject() *Object {
	return &Object{Type: "object"}
}

// ParseObject decodes data into an Object, preserving property order.
func ParseObject(data []byte) (*Object, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return NewObject(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	obj := &Object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse schema: expected member name, got %v", tok)
		}

		switch key {
		case "type":
			var t string
			if err := dec.Decode(&t); err != nil {
				return nil, fmt.Errorf("parse schema: type: %w", err)
			}
			obj.Type = t
		case "properties":
			props, err := parseProperties(dec)
			if err != nil {
				return nil, err
			}
			obj.Props = props
		case "required":
			if err := dec.Decode(&obj.Required); err != nil {
				return nil, fmt.Errorf("parse schema: required: %w", err)
			}
		case "additionalProperties":
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("parse schema: additionalProperties: %w", err)
			}
			obj.AdditionalProperties = raw
		default:
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("parse schema: %s: %w", key, err)
			}
			obj.extra = append(obj.extra, Property{Name: key, Value: raw})
		}
	}

	if obj.Type == "" {
		obj.Type = "object"
	}
	return obj, nil
}

func parseProperties(dec *json.Decoder) ([]Property, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("parse schema: properties: %w", err)
	}
	var props []Property
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse schema: properties: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse schema: properties: expected name, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse schema: property %q: %w", name, err)
		}
		props = append(props, Property{Name: name, Value: raw})
	}
	// consume the closing brace of the properties object
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse schema: properties: %w", err)
	}
	return props, nil
}

func expectDelim(dec *json.Decoder, want rune) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || rune(d) != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// MarshalJSON emits the schema with properties in declared order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	typ := o.Type
	if typ == "" {
		typ = "object"
	}
	buf.WriteString(`"type":`)
	writeJSONString(&buf, typ)

	if len(o.Props) > 0 {
		buf.WriteString(`,"properties":{`)
		for i, p := range o.Props {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(&buf, p.Name)
			buf.WriteByte(':')
			buf.Write(p.Value)
		}
		buf.WriteByte('}')
	}

	if len(o.Required) > 0 {
		req, err := json.Marshal(o.Required)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"required":`)
		buf.Write(req)
	}

	if o.AdditionalProperties != nil {
		buf.WriteString(`,"additionalProperties":`)
		buf.Write(o.AdditionalProperties)
	}

	for _, m := range o.extra {
		buf.WriteByte(',')
		writeJSONString(&buf, m.Name)
		buf.WriteByte(':')
		buf.Write(m.Value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// HasProperty reports whether a property with the given name is declared.
func (o *Object) HasProperty(name string) bool {
	for _, p := range o.Props {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Prepend inserts a property at the front of the property list and its
// name at the front of the required list.
func (o *Object) Prepend(name string, value json.RawMessage) {
	o.Props = append([]Property{{Name: name, Value: value}}, o.Props...)
	o.Required = append([]string{name}, o.Required...)
}

// StringProperty builds a schema value for a string property with the
// given description.
func StringProperty(description string) json.RawMessage {
	b, _ := json.Marshal(struct {
		Type        string `json:"type"`
		Description string `json:"description,omitempty"`
	}{Type: "string", Description: description})
	return b
}
