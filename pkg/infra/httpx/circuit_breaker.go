package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

type CircuitBreaker interface {
	Execute(fn func() error) error
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &circuitBreakerWrapper{
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (g *circuitBreakerWrapper) Execute(fn func() error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		err := fn()
		if err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
	}
	return nil
}

// BreakerClient decorates a Client with a circuit breaker. Each request is
// still a single round trip; an open breaker fails fast without touching the
// network.
type BreakerClient struct {
	client  Client
	breaker CircuitBreaker
}

func NewBreakerClient(client Client, breaker CircuitBreaker) Client {
	if client == nil {
		client = &http.Client{}
	}
	return &BreakerClient{
		client:  client,
		breaker: breaker,
	}
}

func (c *BreakerClient) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := c.breaker.Execute(func() error {
		var err error
		resp, err = c.client.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("upstream returned status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		if resp != nil {
			// 5xx trips the breaker but the response is still returned to the
			// caller so it can be classified.
			return resp, nil
		}
		return nil, err
	}
	return resp, nil
}
