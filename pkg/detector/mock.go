package detector

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/frame"
)

// Mock implements Detector for testing.
type Mock struct {
	// DetectFunc is called when DetectFromDataURI is invoked.
	DetectFunc func(ctx context.Context, dataURI string) (*emotion.Result, error)

	// DetectFileFunc is called when DetectFromFile is invoked.
	DetectFileFunc func(ctx context.Context, upload *frame.Upload) (*emotion.Result, error)

	// HealthFunc is called when Health is invoked.
	HealthFunc func(ctx context.Context) (*HealthStatus, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method string
	Time   time.Time
}

// NewMock creates a mock that answers every request with result.
func NewMock(result *emotion.Result) *Mock {
	return &Mock{
		DetectFunc: func(ctx context.Context, dataURI string) (*emotion.Result, error) {
			return result.Clone(), nil
		},
		DetectFileFunc: func(ctx context.Context, upload *frame.Upload) (*emotion.Result, error) {
			return result.Clone(), nil
		},
		HealthFunc: func(ctx context.Context) (*HealthStatus, error) {
			return &HealthStatus{Status: "ok"}, nil
		},
	}
}

// DetectFromDataURI calls DetectFunc.
func (m *Mock) DetectFromDataURI(ctx context.Context, dataURI string) (*emotion.Result, error) {
	m.record("DetectFromDataURI")
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, dataURI)
	}
	return nil, ErrNoImage
}

// DetectFromFile calls DetectFileFunc.
func (m *Mock) DetectFromFile(ctx context.Context, upload *frame.Upload) (*emotion.Result, error) {
	m.record("DetectFromFile")
	if m.DetectFileFunc != nil {
		return m.DetectFileFunc(ctx, upload)
	}
	return nil, ErrNoImage
}

// Health calls HealthFunc.
func (m *Mock) Health(ctx context.Context) (*HealthStatus, error) {
	m.record("Health")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return &HealthStatus{Status: "ok"}, nil
}

func (m *Mock) record(method string) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: method, Time: time.Now()})
	m.mu.Unlock()
}

// Calls returns all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of calls to method.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

var _ Detector = (*Mock)(nil)
var _ Detector = (*Client)(nil)
