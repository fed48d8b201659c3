package gateway

import (
	"context"
	"sync"

	"github.com/jwebster45206/piously-console/pkg/game"
)

// MockGateway is a mock implementation of Gateway for testing
type MockGateway struct {
	DoActionFunc func(ctx context.Context, req Request) (game.Response, error)

	// Track calls for testing
	Calls []Request

	mu sync.Mutex // protects Calls
}

// Ensure MockGateway implements Gateway
var _ Gateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	return &MockGateway{Calls: make([]Request, 0)}
}

// Reply makes every call return the given JSON body.
func (m *MockGateway) Reply(body string) {
	m.DoActionFunc = func(ctx context.Context, req Request) (game.Response, error) {
		return game.ParseResponse([]byte(body))
	}
}

// Fail makes every call return err.
func (m *MockGateway) Fail(err error) {
	m.DoActionFunc = func(ctx context.Context, req Request) (game.Response, error) {
		return game.Response{}, err
	}
}

func (m *MockGateway) DoAction(ctx context.Context, req Request) (game.Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	fn := m.DoActionFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	// Default behavior - empty reply
	return game.ParseResponse([]byte(`{}`))
}

// CallCount returns how many requests were made.
func (m *MockGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request.
func (m *MockGateway) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
