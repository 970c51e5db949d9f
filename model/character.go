package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NameAttribute is excluded from image prompts
const NameAttribute = "name"

// Attribute represents a single character trait
type Attribute struct {
	Key   string
	Value string
}

// Character represents a story character extracted from a script. Attributes
// keep the declaration order of the source JSON object.
type Character struct {
	Attributes []Attribute
}

// NewCharacter creates a character from key/value pairs
func NewCharacter(pairs ...string) *Character {
	ret := &Character{}
	for i := 0; i+1 < len(pairs); i += 2 {
		ret.Set(pairs[i], pairs[i+1])
	}
	return ret
}

// Name returns character name attribute
func (c *Character) Name() string {
	value, _ := c.Get(NameAttribute)
	return value
}

// Get returns attribute value
func (c *Character) Get(key string) (string, bool) {
	for _, attr := range c.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Set sets attribute value, an existing key keeps its position
func (c *Character) Set(key, value string) {
	for i := range c.Attributes {
		if c.Attributes[i].Key == key {
			c.Attributes[i].Value = value
			return
		}
	}
	c.Attributes = append(c.Attributes, Attribute{Key: key, Value: value})
}

// Prompt returns text-to-image prompt: all values but name joined with ", "
func (c *Character) Prompt() string {
	values := make([]string, 0, len(c.Attributes))
	for _, attr := range c.Attributes {
		if attr.Key == NameAttribute {
			continue
		}
		values = append(values, attr.Value)
	}
	return strings.Join(values, ", ")
}

// MarshalJSON encodes character as JSON object in attribute order
func (c *Character) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, attr := range c.Attributes {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes JSON object preserving key order
func (c *Character) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: character is not an object: %s", ErrInvalidArtifacts, data)
	}
	c.Attributes = nil
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("%w: invalid character key %v", ErrInvalidArtifacts, keyToken)
		}
		var raw json.RawMessage
		if err = decoder.Decode(&raw); err != nil {
			return err
		}
		c.Set(key, rawText(raw))
	}
	_, err = decoder.Token()
	return err
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			return text
		}
	}
	return string(raw)
}

// DecodeCharacters decodes step input artifacts into characters. The input is
// a JSON list whose first element is itself a JSON encoded character list; a
// JSON string holding the encoded list is accepted as well.
func DecodeCharacters(inputArtifacts string) ([]*Character, error) {
	data := bytes.TrimSpace([]byte(inputArtifacts))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidArtifacts)
	}
	var encoded string
	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifacts, err)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: no artifacts", ErrInvalidArtifacts)
		}
		if err := json.Unmarshal(items[0], &encoded); err != nil {
			return nil, fmt.Errorf("%w: artifact is not encoded character list: %v", ErrInvalidArtifacts, err)
		}
	case '"':
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifacts, err)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected payload %.32s", ErrInvalidArtifacts, data)
	}
	var characters []*Character
	if err := json.Unmarshal([]byte(encoded), &characters); err != nil {
		return nil, fmt.Errorf("%w: failed to decode characters: %v", ErrInvalidArtifacts, err)
	}
	return characters, nil
}

// EncodeCharacters produces input artifacts in the form accepted by DecodeCharacters
func EncodeCharacters(characters []*Character) (string, error) {
	inner, err := json.Marshal(characters)
	if err != nil {
		return "", err
	}
	outer, err := json.Marshal([]string{string(inner)})
	if err != nil {
		return "", err
	}
	return string(outer), nil
}
