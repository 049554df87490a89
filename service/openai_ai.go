package service

import (
	"context"
	"math"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/pdfqa-be/types"
)

const (
	DefaultLLMModel       = "gpt-4-turbo-preview"
	DefaultLLMTemperature = 0.1
	DefaultLLMMaxTokens   = 1000
)

type OpenAIService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIService(baseURL string, apiKey, model string, temperature float32, maxTokens int) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	if model == "" {
		model = DefaultLLMModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultLLMMaxTokens
	}
	// go-openai drops a zero temperature from the request.
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	return &OpenAIService{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (s *OpenAIService) GenerateAnswer(ctx context.Context, prompt string) (string, int, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		},
	)
	if err != nil {
		return "", 0, types.WrapError(types.KindAnswerGeneration, err, "Failed to generate answer: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, types.NewError(types.KindAnswerGeneration, "Failed to generate answer: no response generated")
	}
	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
}
