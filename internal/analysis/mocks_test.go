package analysis

import (
	"context"
	"sync"

	"stomatrack/internal/models"
)

// MockProvider is a hand-written Provider double with call tracking.
type MockProvider struct {
	GenerateFunc func(ctx context.Context, req models.AIRequest) (string, error)

	mu        sync.Mutex
	CallCount int
	Requests  []models.AIRequest
}

func (m *MockProvider) Generate(ctx context.Context, req models.AIRequest) (string, error) {
	m.mu.Lock()
	m.CallCount++
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "{}", nil
}

func respondWith(body string) *MockProvider {
	return &MockProvider{GenerateFunc: func(context.Context, models.AIRequest) (string, error) {
		return body, nil
	}}
}

func failWith(err error) *MockProvider {
	return &MockProvider{GenerateFunc: func(context.Context, models.AIRequest) (string, error) {
		return "", err
	}}
}
