package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"b", "a"}, `["b","a"]`},
		{"empty object", map[string]any{}, "{}"},
		{"string map", map[string]string{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{
			"b": 1,
			"a": 2,
		},
		"a": 3,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 even though the UTF-8 bytes sort after.
	obj := map[string]any{
		"\uff61":     1,
		"\U0001F600": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	result, err := MarshalCanonical("Cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"Caf\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// An escaped backslash followed by u2028 text is not a separator.
	result, err = MarshalCanonical(`x\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalCanonicalForbidden(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(1.5)
	assert.ErrorContains(t, err, "floats are forbidden")

	_, err = MarshalCanonical(struct{}{})
	assert.ErrorContains(t, err, "unsupported type")

	_, err = MarshalCanonical((*Metadata)(nil))
	assert.Error(t, err)

	_, err = MarshalCanonical([]any{"ok", 2.0})
	assert.ErrorContains(t, err, "array[1]")
}

func TestMarshalCanonicalMetadata(t *testing.T) {
	md := Metadata{
		UID:           NewMetadataKey("Door1"),
		Value:         "Equipment_Door",
		Configuration: map[string]string{ConfigHasLocation: "LivingRoom"},
	}

	result, err := MarshalCanonical(md)
	require.NoError(t, err)
	assert.Equal(t,
		`{"configuration":{"hasLocation":"LivingRoom"},"uid":{"item_name":"Door1","namespace":"semantics"},"value":"Equipment_Door"}`,
		string(result))

	ptr, err := MarshalCanonical(&md)
	require.NoError(t, err)
	assert.Equal(t, result, ptr)
}

func TestMarshalCanonicalMetadataNilConfiguration(t *testing.T) {
	md := Metadata{UID: NewMetadataKey("Door1"), Value: "Equipment_Door"}

	result, err := MarshalCanonical(md)
	require.NoError(t, err)
	assert.Contains(t, string(result), `"configuration":{}`)
}

func TestMarshalCanonicalChange(t *testing.T) {
	md := Metadata{UID: NewMetadataKey("Door1"), Value: "Equipment_Door"}

	added, err := MarshalCanonical(Change{Seq: 1, Source: "test", Kind: ChangeAdded, ItemName: "Door1", New: &md})
	require.NoError(t, err)
	assert.Equal(t,
		`{"item_name":"Door1","kind":"added","new":{"configuration":{},"uid":{"item_name":"Door1","namespace":"semantics"},"value":"Equipment_Door"},"seq":1,"source":"test"}`,
		string(added))

	removed, err := MarshalCanonical(Change{Seq: 2, ID: "abc", Source: "test", Kind: ChangeRemoved, ItemName: "Door1", Old: &md})
	require.NoError(t, err)
	assert.Contains(t, string(removed), `"id":"abc"`)
	assert.Contains(t, string(removed), `"old":`)
	assert.NotContains(t, string(removed), `"new":`)
}

func TestMarshalCanonicalItem(t *testing.T) {
	item := Item{Name: "G", Type: ItemTypeGroup, Tags: []string{"Room"}, Members: []string{"b", "a"}}

	result, err := MarshalCanonical(item)
	require.NoError(t, err)
	assert.Equal(t,
		`{"groups":[],"members":["b","a"],"name":"G","tags":["Room"],"type":"Group"}`,
		string(result))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	md := Metadata{
		UID:   NewMetadataKey("Point1"),
		Value: "Point_Switch",
		Configuration: map[string]string{
			ConfigHasLocation: "Kitchen",
			ConfigIsPointOf:   "Lamp",
			ConfigRelatesTo:   "Property_Light",
		},
	}

	first, err := MarshalCanonical(md)
	require.NoError(t, err)
	for range 20 {
		again, err := MarshalCanonical(md)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
