package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc       func(ctx context.Context, modelName string) error
	GenerateContentFunc func(ctx context.Context, prompt string) (string, error)

	// Track calls for testing
	InitModelCalls       []string
	GenerateContentCalls []string

	mu sync.Mutex // protects all fields above
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls:       make([]string, 0),
		GenerateContentCalls: make([]string, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// GenerateContent mocks content generation
func (m *MockLLMAPI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateContentCalls = append(m.GenerateContentCalls, prompt)

	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt)
	}
	return "{}", nil
}

// SetResponse sets up the mock to return a fixed payload
func (m *MockLLMAPI) SetResponse(payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateContentFunc = func(ctx context.Context, prompt string) (string, error) {
		return payload, nil
	}
}

// SetGenerateContentError sets up the mock to return an error on GenerateContent
func (m *MockLLMAPI) SetGenerateContentError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateContentFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", err
	}
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateContentCalls = make([]string, 0)
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	genCalls := make([]string, len(m.GenerateContentCalls))
	copy(genCalls, m.GenerateContentCalls)

	return initCalls, genCalls
}
