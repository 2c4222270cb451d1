package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestObjectIsClosedAndFullyRequired(t *testing.T) {
	s := Object(map[string]*Schema{"title": String(), "description": String()})

	require.Equal(t, []string{"description", "title"}, s.Required)
	require.NotNil(t, s.AdditionalProperties)
	require.False(t, *s.AdditionalProperties)
}

func TestValidate(t *testing.T) {
	s := Object(map[string]*Schema{"title": String(), "description": String()})

	tests := []struct {
		name string
		in   string
		path string
	}{
		{"ok", `{"title":"a","description":"b"}`, ""},
		{"missing", `{"title":"a"}`, "$.description"},
		{"blank", `{"title":" ","description":"b"}`, "$.title"},
		{"wrong type", `{"title":1,"description":"b"}`, "$.title"},
		{"not object", `[]`, "$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validate(s, decode(t, tt.in), "$")
			if tt.path == "" {
				require.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			require.Equal(t, tt.path, v.path)
		})
	}
}

func TestExtractJSONPrefersWholeContent(t *testing.T) {
	raw, _, err := extractJSON(`{"a":1}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(raw))

	raw, _, err = extractJSON("text {\"a\":{\"b\":2}} trailing")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":{"b":2}}`, string(raw))
}

func TestDecodeEnvelopePrefersChat(t *testing.T) {
	env, err := decodeEnvelope([]byte(`{"choices":[{"message":{"content":"chat"}}],"output_text":"out"}`))
	require.NoError(t, err)
	require.Equal(t, "chat", env.text())

	env, err = decodeEnvelope([]byte(`{"choices":[{"message":{"content":""}}],"output_text":"out"}`))
	require.NoError(t, err)
	require.Equal(t, "out", env.text())
}
