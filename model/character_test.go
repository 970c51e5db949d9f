package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacter_Prompt(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expect      string
	}{
		{description: "single trait", input: `{"name":"Amy","hair":"red"}`, expect: "red"},
		{description: "declared order", input: `{"name":"Bo","hair":"black","eyes":"blue"}`, expect: "black, blue"},
		{description: "name in the middle", input: `{"eyes":"green","name":"Cy","age":"old"}`, expect: "green, old"},
		{description: "non string value", input: `{"name":"Di","age":42}`, expect: "42"},
		{description: "name only", input: `{"name":"Ed"}`, expect: ""},
	}
	for _, testCase := range testCases {
		character := &Character{}
		err := json.Unmarshal([]byte(testCase.input), character)
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, character.Prompt(), testCase.description)
	}
}

func TestCharacter_MarshalJSON(t *testing.T) {
	character := NewCharacter("name", "Bo", "hair", "black", "eyes", "blue")
	data, err := json.Marshal(character)
	assert.NoError(t, err)
	assert.Equal(t, `{"name":"Bo","hair":"black","eyes":"blue"}`, string(data))
	assert.Equal(t, "Bo", character.Name())
}

func TestCharacter_UnmarshalJSON_NotObject(t *testing.T) {
	character := &Character{}
	err := json.Unmarshal([]byte(`["a"]`), character)
	assert.ErrorIs(t, err, ErrInvalidArtifacts)
}

func TestDecodeCharacters(t *testing.T) {
	encoded, err := EncodeCharacters([]*Character{
		NewCharacter("name", "Amy", "hair", "red"),
		NewCharacter("name", "Bo", "hair", "black", "eyes", "blue"),
	})
	assert.NoError(t, err)

	characters, err := DecodeCharacters(encoded)
	assert.NoError(t, err)
	if assert.Len(t, characters, 2) {
		assert.Equal(t, "red", characters[0].Prompt())
		assert.Equal(t, "black, blue", characters[1].Prompt())
	}

	characters, err = DecodeCharacters(`"[{\"name\":\"Amy\",\"hair\":\"red\"}]"`)
	assert.NoError(t, err)
	assert.Len(t, characters, 1)
}

func TestDecodeCharacters_Invalid(t *testing.T) {
	for _, input := range []string{"", "[]", `[{"name":"Amy"}]`, `{"name":"Amy"}`, `["not json"]`} {
		_, err := DecodeCharacters(input)
		assert.ErrorIs(t, err, ErrInvalidArtifacts, input)
	}
}
