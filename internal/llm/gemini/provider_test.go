package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandria/chatvault/internal/config"
	"github.com/sandria/chatvault/internal/llm"
	"github.com/sandria/chatvault/internal/tool"
)

func TestProviderConfiguration(t *testing.T) {
	p := NewProvider(config.AIConfig{APIKey: "", Model: ""})
	assert.False(t, p.IsConfigured())
	assert.Equal(t, "gemini-2.0-flash", p.DefaultModel())
	assert.Equal(t, "gemini", p.Name())

	p = NewProvider(config.AIConfig{APIKey: "k", Model: "gemini-1.5-pro"})
	assert.True(t, p.IsConfigured())
	assert.Equal(t, "gemini-1.5-pro", p.DefaultModel())
}

func TestToContents(t *testing.T) {
	turns := []llm.Turn{
		{Role: llm.RoleUser, Text: "Hi"},
		{Role: llm.RoleModel, Text: "Hello!"},
	}

	contents := toContents(turns)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, genai.Text("Hi"), contents[0].Parts[0])
	assert.Equal(t, "model", contents[1].Role)
}

func TestToGenaiTools(t *testing.T) {
	descriptors := []tool.Descriptor{{
		Name:        "fetch_current_weather",
		Description: "Fetch current weather data for a given city",
		Params: map[string]tool.Param{
			"city": {Type: "string", Description: "The city name"},
		},
		Required: []string{"city"},
	}}

	tools := toGenaiTools(descriptors)
	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)

	decl := tools[0].FunctionDeclarations[0]
	assert.Equal(t, "fetch_current_weather", decl.Name)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["city"].Type)
	assert.Equal(t, []string{"city"}, decl.Parameters.Required)
}

func TestCollectText(t *testing.T) {
	assert.Equal(t, "", collectText(nil))
	assert.Equal(t, "", collectText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{genai.Text("Hello "), genai.Text("world")},
			},
		}},
	}
	assert.Equal(t, "Hello world", collectText(resp))
}
