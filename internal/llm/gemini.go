package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient Google Gemini 补全客户端
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// Ensure GeminiClient implements Completer
var _ Completer = (*GeminiClient)(nil)

// NewGeminiClient 创建 Gemini 客户端
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName}, nil
}

// Complete implements Completer
func (c *GeminiClient) Complete(ctx context.Context, req *Request) (string, error) {
	system, user := req.split()

	m := c.client.GenerativeModel(c.modelName)
	if req.Temperature != nil {
		m.SetTemperature(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if system != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	m.ResponseMIMEType = "application/json"

	parts := make([]genai.Part, 0, len(user))
	for _, u := range user {
		parts = append(parts, genai.Text(u))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return geminiText(resp)
}

// Close implements Completer
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content received from AI")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content received from AI")
	}
	return sb.String(), nil
}
