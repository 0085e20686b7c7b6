package safecomms_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/safecomms/safecomms-go/pkg/infra/httpx/mocks"
	"github.com/safecomms/safecomms-go/pkg/safecomms"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, transport *mocks.MockHTTPClient) *safecomms.Client {
	t.Helper()
	client, err := safecomms.NewClient("test-api-key", safecomms.WithHTTPClient(transport))
	require.NoError(t, err)
	return client
}

func TestNewClient_EmptyAPIKey(t *testing.T) {
	client, err := safecomms.NewClient("")

	assert.Nil(t, client)
	var configurationErr *safecomms.ConfigurationError
	assert.ErrorAs(t, err, &configurationErr)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	var captured *http.Request
	mockClient.On("Do", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(*http.Request)
		}).
		Return(jsonResponse(http.StatusOK, `{"isClean": true}`), nil).Once()

	client := newTestClient(t, mockClient)
	_, err := client.ModerateText(context.Background(), "hello", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://api.safecomms.dev/moderation/text", captured.URL.String())
}

func TestNewClient_BaseURLTrailingSlashTrimmed(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	var captured *http.Request
	mockClient.On("Do", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(*http.Request)
		}).
		Return(jsonResponse(http.StatusOK, `{"isClean": true}`), nil).Once()

	client, err := safecomms.NewClient(
		"test-api-key",
		safecomms.WithHTTPClient(mockClient),
		safecomms.WithBaseURL("https://moderation.example.com/"),
	)
	require.NoError(t, err)

	_, err = client.ModerateText(context.Background(), "hello", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://moderation.example.com/moderation/text", captured.URL.String())
}

func TestClient_RequestHeaders(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	var captured *http.Request
	mockClient.On("Do", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(*http.Request)
		}).
		Return(jsonResponse(http.StatusOK, `{"isClean": true}`), nil).Once()

	client := newTestClient(t, mockClient)
	_, err := client.ModerateText(context.Background(), "hello", nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-api-key", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.NotEmpty(t, captured.Header.Get("X-Request-Id"))
}

func TestClient_AuthenticationError(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	mockClient.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusUnauthorized, `{"title": "Unauthorized", "detail": "invalid api key"}`), nil).Once()

	client := newTestClient(t, mockClient)
	result, err := client.ModerateText(context.Background(), "hello", nil)

	assert.Nil(t, result)
	var authenticationErr *safecomms.AuthenticationError
	require.ErrorAs(t, err, &authenticationErr)
	assert.Equal(t, http.StatusUnauthorized, authenticationErr.Status)
	assert.Equal(t, "invalid api key", authenticationErr.Message)
}

func TestClient_RateLimitError(t *testing.T) {
	resp := jsonResponse(http.StatusTooManyRequests, `{"detail": "quota exceeded"}`)
	resp.Header.Set("Retry-After", "7")

	mockClient := new(mocks.MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(resp, nil).Once()

	client := newTestClient(t, mockClient)
	_, err := client.ModerateText(context.Background(), "hello", nil)

	var rateLimitErr *safecomms.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, "quota exceeded", rateLimitErr.Message)
	assert.Equal(t, float64(7), rateLimitErr.RetryAfter.Seconds())
}

func TestClient_RateLimitError_NoRetryAfter(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	mockClient.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusTooManyRequests, `{}`), nil).Once()

	client := newTestClient(t, mockClient)
	_, err := client.ModerateText(context.Background(), "hello", nil)

	var rateLimitErr *safecomms.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Zero(t, rateLimitErr.RetryAfter)
}

func TestClient_ServerError(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	mockClient.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusInternalServerError, `{"title": "Internal Server Error"}`), nil).Once()

	client := newTestClient(t, mockClient)
	_, err := client.ModerateText(context.Background(), "hello", nil)

	var serverErr *safecomms.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
	assert.Contains(t, serverErr.Error(), "Internal Server Error")
}

func TestClient_ServerError_NonProblemBody(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	mockClient.On("Do", mock.Anything).
		Return(jsonResponse(http.StatusBadGateway, `upstream broke`), nil).Once()

	client := newTestClient(t, mockClient)
	_, err := client.ModerateText(context.Background(), "hello", nil)

	var serverErr *safecomms.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "Bad Gateway", serverErr.Message)
}

func TestClient_NetworkError(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	mockClient.On("Do", mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	client := newTestClient(t, mockClient)
	_, err := client.ModerateText(context.Background(), "hello", nil)

	var networkErr *safecomms.NetworkError
	require.ErrorAs(t, err, &networkErr)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_ConcurrentCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/moderation/text":
			_, _ = w.Write([]byte(`{"isClean": false, "reason": "profanity"}`))
		case "/usage":
			_, _ = w.Write([]byte(`{"tokensUsed": 42, "tier": "pro"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := safecomms.NewClient("test-api-key", safecomms.WithBaseURL(server.URL))
	require.NoError(t, err)

	const iterations = 20
	errs := make(chan error, iterations*2)
	for i := 0; i < iterations; i++ {
		go func() {
			result, err := client.ModerateText(context.Background(), "hello", nil)
			if err == nil && result.IsClean {
				err = errors.New("moderation result leaked from another call")
			}
			errs <- err
		}()
		go func() {
			report, err := client.GetUsage(context.Background())
			if err == nil && report.TokensUsed != 42 {
				err = errors.New("usage report leaked from another call")
			}
			errs <- err
		}()
	}
	for i := 0; i < iterations*2; i++ {
		assert.NoError(t, <-errs)
	}
}

func decodeRequestBody(t *testing.T, req *http.Request) map[string]interface{} {
	t.Helper()
	require.NotNil(t, req)
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(bytes.NewReader(raw)).Decode(&decoded))
	return decoded
}
