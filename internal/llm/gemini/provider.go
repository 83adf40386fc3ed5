package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/sandria/chatvault/internal/config"
	"github.com/sandria/chatvault/internal/llm"
	"github.com/sandria/chatvault/internal/tool"
)

// Provider implements llm.Provider against the Gemini API
type Provider struct {
	apiKey string
	model  string
}

// NewProvider creates a new Gemini provider
func NewProvider(cfg config.AIConfig) *Provider {
	return &Provider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.0-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Generate produces a single text completion
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}
	if len(req.Turns) == 0 {
		return nil, fmt.Errorf("request contains no turns")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model, last := p.prepare(client, req)

	cs := model.StartChat()
	cs.History = toContents(req.Turns[:len(req.Turns)-1])

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Text:       text,
		Model:      req.Model,
		TokensUsed: tokensUsed,
	}, nil
}

// GenerateStream produces a streaming completion. Function calls requested
// by the model are executed against the declared tool handlers and fed back
// into the same chat; the caller sees an uninterrupted text stream.
func (p *Provider) GenerateStream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}
	if len(req.Turns) == 0 {
		return nil, fmt.Errorf("request contains no turns")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model, last := p.prepare(client, req)

	handlers := make(map[string]tool.Handler, len(req.Tools))
	for _, d := range req.Tools {
		handlers[d.Name] = d.Handler
	}

	cs := model.StartChat()
	cs.History = toContents(req.Turns[:len(req.Turns)-1])

	return &stream{
		ctx:      ctx,
		client:   client,
		cs:       cs,
		iter:     cs.SendMessageStream(ctx, genai.Text(last)),
		handlers: handlers,
	}, nil
}

// prepare builds the generative model and returns the final user turn text.
func (p *Provider) prepare(client *genai.Client, req llm.Request) (*genai.GenerativeModel, string) {
	name := req.Model
	if name == "" {
		name = p.DefaultModel()
	}

	model := client.GenerativeModel(name)
	model.ResponseMIMEType = "text/plain"
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(req.MaxOutputTokens)
	}
	if len(req.Tools) > 0 {
		model.Tools = toGenaiTools(req.Tools)
	}

	return model, req.Turns[len(req.Turns)-1].Text
}

// stream adapts the genai response iterator to llm.Stream, resolving
// function calls between rounds.
type stream struct {
	ctx      context.Context
	client   *genai.Client
	cs       *genai.ChatSession
	iter     *genai.GenerateContentResponseIterator
	handlers map[string]tool.Handler

	pending []string
	calls   []genai.FunctionCall
	closed  bool
}

func (s *stream) Next() (string, error) {
	for {
		if len(s.pending) > 0 {
			chunk := s.pending[0]
			s.pending = s.pending[1:]
			return chunk, nil
		}
		if s.closed {
			return "", io.EOF
		}

		resp, err := s.iter.Next()
		if errors.Is(err, iterator.Done) {
			if len(s.calls) > 0 {
				parts := s.resolveCalls()
				s.calls = nil
				s.iter = s.cs.SendMessageStream(s.ctx, parts...)
				continue
			}
			s.close()
			return "", io.EOF
		}
		if err != nil {
			s.close()
			return "", fmt.Errorf("gemini streaming error: %w", err)
		}

		s.ingest(resp)
	}
}

func (s *stream) ingest(resp *genai.GenerateContentResponse) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			switch v := part.(type) {
			case genai.Text:
				if v != "" {
					s.pending = append(s.pending, string(v))
				}
			case genai.FunctionCall:
				s.calls = append(s.calls, v)
			}
		}
	}
}

func (s *stream) resolveCalls() []genai.Part {
	parts := make([]genai.Part, 0, len(s.calls))
	for _, call := range s.calls {
		handler, ok := s.handlers[call.Name]
		var result map[string]any
		if ok {
			result = handler(s.ctx, call.Args)
		} else {
			result = map[string]any{"error": fmt.Sprintf("unknown tool: %s", call.Name)}
		}
		parts = append(parts, genai.FunctionResponse{
			Name:     call.Name,
			Response: result,
		})
	}
	return parts
}

// Close releases the genai client. Idempotent; also called internally once
// the iterator is exhausted.
func (s *stream) Close() error {
	s.close()
	return nil
}

func (s *stream) close() {
	if !s.closed {
		s.closed = true
		s.client.Close()
	}
}

func toContents(turns []llm.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, &genai.Content{
			Role:  string(t.Role),
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}

func toGenaiTools(descriptors []tool.Descriptor) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(descriptors))
	for _, d := range descriptors {
		properties := make(map[string]*genai.Schema, len(d.Params))
		for name, p := range d.Params {
			properties[name] = &genai.Schema{
				Type:        toGenaiType(p.Type),
				Description: p.Description,
			}
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   d.Required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

func toGenaiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}
