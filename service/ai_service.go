package service

import (
	"context"
)

// AIService generates a single completion for a fully built prompt and
// reports the total tokens the provider billed for it.
type AIService interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, int, error)
}
