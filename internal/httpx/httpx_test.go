package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(retries int) *httpx.Client {
	c := httpx.New(2*time.Second, retries)
	c.Policy.Delay = time.Millisecond
	return c
}

func TestDo_SendsJSONAndHeaders(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1.1.1.1", body["ip"])
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	data, err := newClient(0).Do(context.Background(), httpx.Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Header: map[string]string{"Authorization": "Bearer k"},
		Body:   map[string]string{"ip": "1.1.1.1"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}

func TestDo_RetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(2).Do(context.Background(), httpx.Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestDo_RetriesExhausted(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(1).Do(context.Background(), httpx.Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrNetwork)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDo_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(3).Do(context.Background(), httpx.Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)

	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "invalid api key")
	assert.ErrorIs(t, err, errkind.ErrNetwork)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDo_TransportErrorRetried(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient(1).Do(context.Background(), httpx.Request{Method: http.MethodGet, URL: url})
	require.Error(t, err)

	var te *httpx.TransportError
	require.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, errkind.ErrNetwork)
}

func TestDo_Timeout(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c := httpx.New(50*time.Millisecond, 0)
	_, err := c.Do(context.Background(), httpx.Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrNetwork)
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := httpx.Retry(ctx, httpx.Policy{Retries: 5, Delay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, &httpx.TransportError{URL: "x", Err: errors.New("reset")}
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, httpx.Retryable(&httpx.StatusError{StatusCode: 500}))
	assert.False(t, httpx.Retryable(&httpx.StatusError{StatusCode: 404}))
	assert.True(t, httpx.Retryable(&httpx.TransportError{Err: errors.New("eof")}))
	assert.False(t, httpx.Retryable(errors.New("plain")))
	assert.False(t, httpx.Retryable(context.Canceled))
	assert.False(t, httpx.Retryable(nil))
}
