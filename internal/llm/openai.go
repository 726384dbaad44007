package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// OpenAIClient 基于 eino 的 OpenAI 兼容补全客户端
type OpenAIClient struct {
	chatModel model.BaseChatModel
}

// Ensure OpenAIClient implements Completer
var _ Completer = (*OpenAIClient)(nil)

// NewOpenAIClient 创建 OpenAI 兼容客户端
func NewOpenAIClient(ctx context.Context, baseURL, apiKey, modelName string) (*OpenAIClient, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &OpenAIClient{chatModel: chatModel}, nil
}

// NewOpenAIClientWithModel 使用已有的 eino ChatModel
func NewOpenAIClientWithModel(cm model.BaseChatModel) *OpenAIClient {
	return &OpenAIClient{chatModel: cm}
}

// Complete implements Completer
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (string, error) {
	var opts []model.Option
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	resp, err := c.chatModel.Generate(ctx, req.Messages, opts...)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return resp.Content, nil
}

// Close implements Completer
func (c *OpenAIClient) Close() error {
	return nil
}
