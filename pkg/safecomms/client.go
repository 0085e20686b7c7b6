package safecomms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/safecomms/safecomms-go/pkg/infra/httpx"
	"github.com/safecomms/safecomms-go/pkg/infra/prometheus"
	"github.com/safecomms/safecomms-go/pkg/version"
)

// DefaultBaseURL is the canonical API endpoint.
const DefaultBaseURL = "https://api.safecomms.dev"

const (
	moderationTextPath        = "/moderation/text"
	moderationImagePath       = "/moderation/image"
	moderationImageUploadPath = "/moderation/image/upload"
	usagePath                 = "/usage"
)

// Client is an immutable handle on the SafeComms API. A single instance is
// safe for concurrent use; each call is exactly one request/response round
// trip with no shared per-call state.
type Client struct {
	apiKey        string
	baseURL       string
	client        httpx.Client
	logger        *logrus.Logger
	enableMetrics bool
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL overrides the default API endpoint. A trailing slash is
// trimmed.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom transport, e.g. httpx.NewFastHTTPClient or an
// httpx.BreakerClient.
func WithHTTPClient(client httpx.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger. By default the client is silent.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables prometheus request counters and latency histograms.
func WithMetrics() Option {
	return func(c *Client) {
		c.enableMetrics = true
	}
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, &ConfigurationError{Reason: "api key must be specified"}
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// send issues a single request and decodes a 2xx response body into out.
// Non-2xx responses and transport failures come back as typed errors.
func (c *Client) send(
	ctx context.Context,
	operation string,
	method string,
	path string,
	contentType string,
	body io.Reader,
	out interface{},
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ConfigurationError{Reason: "failed to create request: " + err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-Id", uuid.New().String())

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if c.enableMetrics {
		prometheus.ClientRequestLatency.WithLabelValues(operation).
			Observe(float64(duration.Milliseconds()))
	}

	if err != nil {
		if c.enableMetrics {
			prometheus.ClientRequestTotal.WithLabelValues(operation, "error").Inc()
		}
		c.logger.WithError(err).WithField("operation", operation).Error("request failed")
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if c.enableMetrics {
		prometheus.ClientRequestTotal.
			WithLabelValues(operation, prometheus.StatusClass(resp.StatusCode)).Inc()
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"operation": operation,
		"status":    resp.StatusCode,
		"duration":  duration.String(),
	}).Debug("request completed")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return classifyStatus(resp.StatusCode, respBody, resp.Header)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
