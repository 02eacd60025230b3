package mock

import "context"

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, the default keeps every passage in its original order.
	RerankFunc func(ctx context.Context, query string, passages []string) ([]int, error)

	callCount int
}

// NewMockReranker creates a mock reranker with pass-through default behavior.
// Note: Returns concrete type to allow test assertions via GetMockReranker().
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank returns the injected selection, or every index in original order.
func (m *MockReranker) Rerank(ctx context.Context, query string, passages []string) ([]int, error) {
	m.callCount++

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, passages)
	}

	indexes := make([]int, len(passages))
	for i := range passages {
		indexes[i] = i
	}
	return indexes, nil
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankFunc = nil
}
