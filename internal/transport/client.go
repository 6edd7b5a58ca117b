// Package transport implements the HTTP transport for GovTalk message
// exchange. One exchange is one POST of a complete envelope and one
// complete envelope (or error page) back; there is no streaming and no
// session state. Retry policy lives with the caller, not here.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TransportError reports a failed exchange: connection failure, timeout,
// or a non-success HTTP status. It says nothing about whether the gateway
// processed the message.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("transport: exchange with %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Config contains HTTP client settings.
type Config struct {
	Timeout         time.Duration
	IdleConnTimeout time.Duration
}

// DefaultConfig returns the default transport settings.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         60 * time.Second,
		IdleConnTimeout: 90 * time.Second,
	}
}

// Client posts GovTalk envelopes and returns the raw response bytes.
type Client struct {
	client *http.Client
	config *Config
}

// NewClient creates a transport client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	transport := &http.Transport{
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		config: config,
	}
}

// Exchange posts one serialized envelope to the endpoint and reads the
// complete response body. Any failure is a *TransportError.
func (c *Client) Exchange(ctx context.Context, endpoint string, message []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(message))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("User-Agent", "go-govtalk/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	return body, nil
}
