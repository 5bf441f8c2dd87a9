package mocks

import (
	"context"
	"sync"
)

// MockPublisher records published events for assertions
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{PublishCalls: make([]PublishCall, 0)}
}

// Publish records the call and returns PublishErr
func (m *MockPublisher) Publish(_ context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: event})
	return m.PublishErr
}

// Calls returns a copy of the recorded calls
func (m *MockPublisher) Calls() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]PublishCall(nil), m.PublishCalls...)
}
