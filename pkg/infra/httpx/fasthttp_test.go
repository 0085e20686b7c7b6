package httpx_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safecomms/safecomms-go/pkg/infra/httpx"
)

func TestFastHTTPClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/moderation/text", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"content": "hello"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"isClean": true}`))
	}))
	defer server.Close()

	client := httpx.NewFastHTTPClient(httpx.WithTimeout(5 * time.Second))

	req, err := http.NewRequest(http.MethodPost, server.URL+"/moderation/text", strings.NewReader(`{"content": "hello"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer key")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isClean": true}`, string(body))
}

func TestFastHTTPClient_SetsUserAgent(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpx.NewFastHTTPClient(httpx.WithUserAgent("safecomms-go/test"))

	req, err := http.NewRequest(http.MethodGet, server.URL+"/usage", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "safecomms-go/test", userAgent)
}

func TestFastHTTPClient_ExpiredDeadline(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpx.NewFastHTTPClient()

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/usage", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(0), requests.Load())
}

func TestFastHTTPClient_ConnectionRefused(t *testing.T) {
	client := httpx.NewFastHTTPClient(httpx.WithTimeout(time.Second))

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1/usage", nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	assert.Error(t, err)
}
