package llmwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseToolSpec() ToolSpec {
	return ToolSpec{
		Name:        "get_weather",
		Description: "fetch current weather",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"city": map[string]any{"type": "string"}},
			"required":   []string{"city"},
		},
	}
}

func TestAnthropicSchemaShape(t *testing.T) {
	schema := baseToolSpec().AnthropicSchema()
	assert.Equal(t, "get_weather", schema["name"])
	assert.Contains(t, schema, "input_schema")
}

func TestOpenAISchemaNestedFunctionForm(t *testing.T) {
	schema := baseToolSpec().OpenAISchema()
	assert.Equal(t, "function", schema["type"])
	fn, ok := schema["function"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "get_weather", fn["name"])
}

func TestResponsesSchemaFlatFormWithNilStrict(t *testing.T) {
	schema := baseToolSpec().ResponsesSchema()
	assert.Equal(t, "function", schema["type"])
	assert.Equal(t, "get_weather", schema["name"])
	val, present := schema["strict"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestGeminiSchemaParametersJSONSchema(t *testing.T) {
	schema := baseToolSpec().GeminiSchema()
	assert.Contains(t, schema, "parametersJsonSchema")
}

func TestParametersOrEmptyDefaultsToEmptyObjectSchema(t *testing.T) {
	t0 := ToolSpec{Name: "noop"}
	params := t0.parametersOrEmpty()
	assert.Equal(t, "object", params["type"])
}
