package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/pdfqa-be/types"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, temperature float32, maxTokens int) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("no API key provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultLLMMaxTokens
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiService{
		client: client,
		model:  model,
	}, nil
}

func (s *GeminiService) GenerateAnswer(ctx context.Context, prompt string) (string, int, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", 0, types.WrapError(types.KindAnswerGeneration, err, "Failed to generate answer: %v", err)
	}
	if len(resp.Candidates) == 0 {
		return "", 0, types.NewError(types.KindAnswerGeneration, "Failed to generate answer: no response generated")
	}

	var content strings.Builder
	if cand := resp.Candidates[0]; cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return content.String(), tokens, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}
