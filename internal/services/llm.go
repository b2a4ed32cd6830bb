package services

import (
	"context"
)

// LLMService defines the interface for interacting with a generation API
type LLMService interface {
	// InitModel validates credentials and model availability on startup
	InitModel(ctx context.Context, modelName string) error

	// GenerateContent sends a single prompt and returns the model's raw
	// text response. Callers parse and validate the payload themselves.
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
