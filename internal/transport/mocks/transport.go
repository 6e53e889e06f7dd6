package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"sheets_quota_client/internal/transport"
)

// HandlerFunc answers one request. Returning an error simulates a network failure.
type HandlerFunc func(req *transport.Request) (*transport.Response, error)

// MockTransport is a test double for transport.Transport
type MockTransport struct {
	mu       sync.Mutex
	handler  HandlerFunc
	requests []*transport.Request
}

// NewMockTransport creates a mock that answers with handler. A nil handler
// answers every request with 200 and an empty JSON object.
func NewMockTransport(handler HandlerFunc) *MockTransport {
	if handler == nil {
		handler = func(*transport.Request) (*transport.Response, error) {
			return JSONResponse(http.StatusOK, map[string]interface{}{}), nil
		}
	}
	return &MockTransport{handler: handler}
}

func (m *MockTransport) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.handler(req)
}

// Requests returns a copy of every request received, in arrival order.
func (m *MockTransport) Requests() []*transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*transport.Request(nil), m.requests...)
}

// CallCount returns the number of requests received.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Sequence answers the nth call with responses[n], repeating the last one.
func Sequence(responses ...*transport.Response) HandlerFunc {
	var mu sync.Mutex
	n := 0
	return func(*transport.Request) (*transport.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		i := n
		if i >= len(responses) {
			i = len(responses) - 1
		}
		n++
		return responses[i], nil
	}
}

// JSONResponse encodes body as the response payload.
func JSONResponse(status int, body interface{}) *transport.Response {
	data, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return &transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       data,
	}
}

// ErrorResponse builds a Google style error payload.
func ErrorResponse(status int, reason, message string) *transport.Response {
	return JSONResponse(status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
			"errors": []map[string]interface{}{
				{"reason": reason, "message": message},
			},
		},
	})
}

// WithRetryAfter sets the Retry-After header in seconds.
func WithRetryAfter(resp *transport.Response, seconds int) *transport.Response {
	resp.Header.Set("Retry-After", strconv.Itoa(seconds))
	return resp
}

// MockAuthenticator is a test double for transport.Authenticator
type MockAuthenticator struct {
	mu           sync.Mutex
	Token        string
	AuthorizeErr error
	RefreshErr   error
	refreshes    int
}

// NewMockAuthenticator creates an authenticator that sends "Bearer <token>".
func NewMockAuthenticator(token string) *MockAuthenticator {
	return &MockAuthenticator{Token: token}
}

func (m *MockAuthenticator) Authorize(ctx context.Context, req *transport.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AuthorizeErr != nil {
		return m.AuthorizeErr
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set("Authorization", "Bearer "+m.Token)
	return nil
}

func (m *MockAuthenticator) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.RefreshErr
}

// Refreshes returns how many times Refresh was called.
func (m *MockAuthenticator) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}
