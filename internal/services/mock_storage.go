package services

import (
	"context"
	"errors"

	"github.com/sigco3111/rpg-script-editor/pkg/player"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	project   *script.Project
	sessions  map[string]*player.Session
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string]*player.Session),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.pingError = err
}

// SetSaveError configures the mock to fail on any save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveProject mocks saving the project
func (m *MockStorage) SaveProject(ctx context.Context, project *script.Project) error {
	if m.saveError != nil {
		return m.saveError
	}
	if project == nil {
		return errors.New("project cannot be nil")
	}
	m.project = project
	return nil
}

// LoadProject mocks loading the project
func (m *MockStorage) LoadProject(ctx context.Context) (*script.Project, error) {
	return m.project, nil
}

// DeleteProject mocks deleting the project
func (m *MockStorage) DeleteProject(ctx context.Context) error {
	m.project = nil
	return nil
}

// SavePlaySession mocks saving a play session
func (m *MockStorage) SavePlaySession(ctx context.Context, session *player.Session) error {
	if m.saveError != nil {
		return m.saveError
	}
	if session == nil {
		return errors.New("session cannot be nil")
	}
	m.sessions[session.ID.String()] = session
	return nil
}

// LoadPlaySession mocks loading a play session
func (m *MockStorage) LoadPlaySession(ctx context.Context, id string) (*player.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return session, nil
}

// DeletePlaySession mocks deleting a play session
func (m *MockStorage) DeletePlaySession(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}
