package http_test

import (
	"context"
	"errors"
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type flakyTransport struct {
	failures atomic.Int32
	next     gohttp.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *gohttp.Request) (*gohttp.Response, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("connection reset")
	}
	return f.next.RoundTrip(req)
}

func TestSendJSONWithBearer(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(http.RequestIDHeader))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"reason":"other"}`, string(body))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(gohttp.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := http.NewClient(http.Options{BaseURL: srv.URL + "/", Logger: logger.Discard()})
	resp, err := c.Post("/api/things").
		Bearer("tok").
		Query("page", "2").
		Body(map[string]string{"reason": "other"}).
		Send(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.True(t, resp.IsJSON())
	var out struct{ OK bool }
	require.NoError(t, resp.JSON(&out))
	assert.True(t, out.OK)
}

func TestNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(gohttp.StatusBadRequest)
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))
	defer srv.Close()

	c := http.NewClient(http.Options{BaseURL: srv.URL, Logger: logger.Discard()})
	resp, err := c.Get("/x").Bearer("").Send(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.False(t, resp.IsJSON())
}

func TestRetryRecoversFromTransportFailure(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusNoContent)
	}))
	defer srv.Close()

	ft := &flakyTransport{next: gohttp.DefaultTransport}
	ft.failures.Store(2)

	c := http.NewClient(http.Options{
		BaseURL:   srv.URL,
		Retries:   3,
		RetryWait: time.Millisecond,
		Transport: ft,
		Logger:    logger.Discard(),
	})
	resp, err := c.Get("/ping").Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusNoContent, resp.StatusCode)
}

func TestRetryGivesUp(t *testing.T) {
	ft := &flakyTransport{next: gohttp.DefaultTransport}
	ft.failures.Store(10)

	c := http.NewClient(http.Options{
		BaseURL:   "http://backend.invalid",
		Retries:   2,
		RetryWait: time.Millisecond,
		Transport: ft,
		Logger:    logger.Discard(),
	})
	_, err := c.Get("/ping").Send(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 attempt(s)")
}

func TestPostIsSentOnceUnlessRetryIsRequested(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusNoContent)
	}))
	defer srv.Close()

	ft := &flakyTransport{next: gohttp.DefaultTransport}
	c := http.NewClient(http.Options{
		BaseURL:   srv.URL,
		Retries:   3,
		RetryWait: time.Millisecond,
		Transport: ft,
		Logger:    logger.Discard(),
	})
	assert.Equal(t, 3, c.Retries())

	ft.failures.Store(1)
	_, err := c.Post("/api/chat/send").Body(map[string]string{"message": "hi"}).Send(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 attempt(s)")

	ft.failures.Store(1)
	resp, err := c.Post("/api/auth/login").Retry(c.Retries()).Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusNoContent, resp.StatusCode)
}

func TestRelativeURLWithoutBase(t *testing.T) {
	c := http.NewClient(http.Options{Logger: logger.Discard()})
	assert.Equal(t, "/api/products?size=12", c.Get("/api/products").Query("size", "12").URL())
}
