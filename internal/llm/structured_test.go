package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject_CleanJSON(t *testing.T) {
	obj, err := DecodeObject(`  {"response":"hi","isCompleted":false}` + "\n")
	require.NoError(t, err)
	assert.Contains(t, obj, "response")
	assert.Contains(t, obj, "isCompleted")
}

func TestDecodeObject_RejectsSurroundingText(t *testing.T) {
	_, err := DecodeObject(`Sure! {"response":"hi"}`)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = DecodeObject(`{"response":"hi"} hope that helps`)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDecodeObject_RejectsNonObject(t *testing.T) {
	_, err := DecodeObject(`["response"]`)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = DecodeObject(`null`)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestStripCodeFences(t *testing.T) {
	raw := "```json\n{\"response\":\"hi\"}\n```"
	assert.Equal(t, "{\"response\":\"hi\"}", StripCodeFences(raw))
}

func TestGreedyObjectSpan(t *testing.T) {
	raw := "Here you go:\n{\"a\":{\"b\":1}}\nThanks!"
	assert.Equal(t, "{\"a\":{\"b\":1}}", GreedyObjectSpan(raw))
	assert.Equal(t, "", GreedyObjectSpan("no braces"))
	assert.Equal(t, "", GreedyObjectSpan("} backwards {"))
}

func TestGreedyObjectSpan_SpansMultipleObjects(t *testing.T) {
	raw := `{"a":1} and {"b":2}`
	assert.Equal(t, raw, GreedyObjectSpan(raw))
}

func TestFirstBalancedObject_NestedBraces(t *testing.T) {
	raw := `text {"response":"x","collected_data":{"k":"v"}} more {"other":1}`
	assert.Equal(t, `{"response":"x","collected_data":{"k":"v"}}`, FirstBalancedObject(raw))
}

func TestFirstBalancedObject_BracesInsideStrings(t *testing.T) {
	raw := `{"response":"use {braces} freely \"}\"","isCompleted":true}`
	assert.Equal(t, raw, FirstBalancedObject(raw))
}

func TestFirstBalancedObject_Unbalanced(t *testing.T) {
	assert.Equal(t, "", FirstBalancedObject(`{"response":"x"`))
}
