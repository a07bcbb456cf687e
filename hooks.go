package ngfftools

import (
	"sync"

	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

// Hook function types for build events
type (
	// MatrixBuiltHook is called with every freshly built matrix
	MatrixBuiltHook func(m *matrix.Matrix)

	// TestsAggregatedHook is called with every fresh aggregation of test documents
	TestsAggregatedHook func(entries []matrix.Entry)
)

// hooks manages build callbacks
type hooks struct {
	mu                sync.RWMutex
	onMatrixBuilt     []MatrixBuiltHook
	onTestsAggregated []TestsAggregatedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnMatrixBuilt registers a callback for built matrices
func (h *hooks) OnMatrixBuilt(fn MatrixBuiltHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMatrixBuilt = append(h.onMatrixBuilt, fn)
}

// OnTestsAggregated registers a callback for aggregated test results
func (h *hooks) OnTestsAggregated(fn TestsAggregatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTestsAggregated = append(h.onTestsAggregated, fn)
}

func (h *hooks) matrixBuilt(m *matrix.Matrix) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onMatrixBuilt {
		fn(m)
	}
}

func (h *hooks) testsAggregated(entries []matrix.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onTestsAggregated {
		fn(entries)
	}
}
