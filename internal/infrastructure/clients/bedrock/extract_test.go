package bedrock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject_BareObject(t *testing.T) {
	raw, err := extractJSONObject(`{"prompts":["a","b","c"]}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompts":["a","b","c"]}`, string(raw))
}

func TestExtractJSONObject_SurroundingProse(t *testing.T) {
	raw, err := extractJSONObject(`Here is the JSON you asked for: {"prompts":["a","b","c"]} hope it helps!`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompts":["a","b","c"]}`, string(raw))
}

func TestExtractJSONObject_MarkdownFence(t *testing.T) {
	text := "```json\n{\"subjective\": \"headache\", \"plan\": \"rest\"}\n```"
	raw, err := extractJSONObject(text)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "headache", doc["subjective"])
}

func TestExtractJSONObject_PlainFence(t *testing.T) {
	text := "```\n{\"plan\": \"rest\"}\n```"
	raw, err := extractJSONObject(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":"rest"}`, string(raw))
}

func TestExtractJSONObject_NestedBraces(t *testing.T) {
	raw, err := extractJSONObject(`noise {"outer": {"inner": 1}} trailing`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"outer":{"inner":1}}`, string(raw))
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	_, err := extractJSONObject("the model declined to answer")
	assert.Error(t, err)
}

func TestExtractJSONObject_MalformedObject(t *testing.T) {
	_, err := extractJSONObject(`{"prompts": ["unterminated"}`)
	assert.Error(t, err)
}

func TestExtractJSONObject_ArrayIsRejected(t *testing.T) {
	// The contract is a JSON object; a bare array has no '{' to anchor on.
	_, err := extractJSONObject(`["a","b","c"]`)
	assert.Error(t, err)
}
