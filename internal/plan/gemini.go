package plan

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProducer generates plan chunks with the Gemini API.
type GeminiProducer struct {
	client *genai.Client
	model  string
}

// NewGeminiProducer dials the Gemini API. Close the producer when done.
func NewGeminiProducer(ctx context.Context, apiKey, model string) (*GeminiProducer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProducer{client: client, model: model}, nil
}

func (p *GeminiProducer) Close() error {
	return p.client.Close()
}

func (p *GeminiProducer) ProduceChunk(ctx context.Context, req ChunkRequest) ([]Day, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildChunkPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("generate weeks %d-%d: %w", req.StartWeek, req.EndWeek, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("generate weeks %d-%d: empty response", req.StartWeek, req.EndWeek)
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw += string(text)
		}
	}
	return parseProducedDays(raw)
}
