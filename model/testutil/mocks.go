package testutil

import (
	"context"
	"sync"

	"sterling/estimate"
	"sterling/speech"
)

// MockEstimator implements model.Estimator for testing
type MockEstimator struct {
	// Configurable response
	EstimateFunc func(ctx context.Context, query string) (*estimate.Result, error)

	mu      sync.Mutex
	queries []string
}

// NewMockEstimator creates a mock that answers every query with justification
func NewMockEstimator(justification string) *MockEstimator {
	return &MockEstimator{
		EstimateFunc: func(ctx context.Context, query string) (*estimate.Result, error) {
			return &estimate.Result{Justification: justification}, nil
		},
	}
}

// NewFailingEstimator creates a mock whose every call fails with err
func NewFailingEstimator(err error) *MockEstimator {
	return &MockEstimator{
		EstimateFunc: func(ctx context.Context, query string) (*estimate.Result, error) {
			return nil, err
		},
	}
}

func (m *MockEstimator) Estimate(ctx context.Context, query string) (*estimate.Result, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.EstimateFunc(ctx, query)
}

// Queries returns every query received so far
func (m *MockEstimator) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// MockRecognizer implements speech.Recognizer by replaying Events
type MockRecognizer struct {
	AvailableFunc  func() error
	PermissionFunc func(ctx context.Context) error
	Events         []speech.Event
	EndErr         error

	// HoldOpen keeps Recognize running after the events until ctx is done
	HoldOpen bool
}

func (m *MockRecognizer) Available() error {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return nil
}

func (m *MockRecognizer) RequestPermission(ctx context.Context) error {
	if m.PermissionFunc != nil {
		return m.PermissionFunc(ctx)
	}
	return nil
}

func (m *MockRecognizer) Recognize(ctx context.Context, fn func(speech.Event)) error {
	for _, ev := range m.Events {
		fn(ev)
	}
	if m.HoldOpen {
		<-ctx.Done()
	}
	return m.EndErr
}
