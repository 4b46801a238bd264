package testkit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ─── MockTransport ────────────────────────────────────────────────────────────

// ErrConnRefused is the transport error a MockStep with Fail set returns.
var ErrConnRefused = errors.New("testkit: connection refused")

// MockStep describes one canned answer.
type MockStep struct {
	Method      string // "" matches any method
	MatchURL    string // path prefix, "" matches any path
	StatusCode  int    // default 200
	ContentType string // default application/json
	Body        string
	Fail        bool // return ErrConnRefused instead of a response
	Times       int  // answer this many calls then fall through; 0 = always
}

// MockTransport implements http.RoundTrip. It answers requests matching a
// step and hands everything else to Next (or fails when Next is nil).
//
//	mt := testkit.NewMockTransport(nil,
//	    testkit.MockStep{MatchURL: "/api/orders", Fail: true, Times: 1})
//	client := sfhttp.NewClient(sfhttp.Options{BaseURL: b.URL(), Transport: mt})
//	...
//	mt.AssertAllCalled(t)
type MockTransport struct {
	Next http.RoundTripper

	mu    sync.Mutex
	steps []mockEntry
}

type mockEntry struct {
	step      MockStep
	callCount int
}

// NewMockTransport builds a transport over next (nil means no pass-through).
func NewMockTransport(next http.RoundTripper, steps ...MockStep) *MockTransport {
	mt := &MockTransport{Next: next}
	for _, s := range steps {
		mt.steps = append(mt.steps, mockEntry{step: s})
	}
	return mt
}

// Add appends a step.
func (mt *MockTransport) Add(step MockStep) {
	mt.mu.Lock()
	mt.steps = append(mt.steps, mockEntry{step: step})
	mt.mu.Unlock()
}

// RoundTrip intercepts the outgoing request.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	for i := range mt.steps {
		entry := &mt.steps[i]
		if !matches(req, entry.step) {
			continue
		}
		if entry.step.Times > 0 && entry.callCount >= entry.step.Times {
			continue
		}
		entry.callCount++
		step := entry.step
		mt.mu.Unlock()

		if req.Body != nil {
			_, _ = io.Copy(io.Discard, req.Body)
			req.Body.Close()
		}
		if step.Fail {
			return nil, ErrConnRefused
		}
		return buildHTTPResponse(req, step), nil
	}
	mt.mu.Unlock()

	if mt.Next == nil {
		return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s: no matching mock step", req.URL)
	}
	return mt.Next.RoundTrip(req)
}

// Calls returns how many requests the step at index i answered.
func (mt *MockTransport) Calls(i int) int {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.steps[i].callCount
}

// AssertAllCalled fails t for every step that never answered a request.
func (mt *MockTransport) AssertAllCalled(t testing.TB) {
	t.Helper()
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, e := range mt.steps {
		assert.NotZero(t, e.callCount, "mock step %s %q was never called", e.step.Method, e.step.MatchURL)
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func matches(req *http.Request, s MockStep) bool {
	if s.Method != "" && !strings.EqualFold(s.Method, req.Method) {
		return false
	}
	return s.MatchURL == "" || strings.HasPrefix(req.URL.Path, s.MatchURL)
}

func buildHTTPResponse(req *http.Request, s MockStep) *http.Response {
	code := s.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	ct := s.ContentType
	if ct == "" {
		ct = "application/json"
	}

	header := make(http.Header)
	header.Set("Content-Type", ct)

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(s.Body))),
		Request:    req,
	}
}
