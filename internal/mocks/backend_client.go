package mocks

import (
	"context"

	"github.com/mirrorlake/repligate/internal/backend"
)

// MockBackendClient implements backend.Client for testing
type MockBackendClient struct {
	RunToCompletionFunc func(ctx context.Context, model string, input backend.Input) (backend.Output, error)
	Calls               int
}

func (m *MockBackendClient) RunToCompletion(ctx context.Context, model string, input backend.Input) (backend.Output, error) {
	m.Calls++
	if m.RunToCompletionFunc != nil {
		return m.RunToCompletionFunc(ctx, model, input)
	}
	return backend.Single(""), nil
}
