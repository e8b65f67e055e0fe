// Package httpclient wraps outbound HTTP calls with timeout and bounded
// exponential-backoff retry. Action executors never talk to net/http directly.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/services"
)

// Request describes one outbound call.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	// Body is serialized to JSON unless it is already a string, which is
	// sent verbatim.
	Body interface{}
	// Timeout is the single budget covering connection, headers and body.
	// Zero means the client default.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
}

// Response is the terminal result of a call. Non-2xx statuses are returned
// here, not as errors; only transport-level failures error out.
type Response struct {
	Status  int
	Headers http.Header
	// Data is the response body parsed as JSON when possible, otherwise the
	// raw text. A body that is not valid JSON never fails the call.
	Data interface{}
}

// Client is a resilient outbound HTTP client.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger

	// backoffBase scales the delay curve (base * 2^(attempt-1)). One second
	// in production; tests shrink it.
	backoffBase time.Duration
}

// New creates a Client with the given default timeout.
func New(defaultTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      logger,
		backoffBase: time.Second,
	}
}

// WithBackoffBase overrides the backoff unit. Intended for tests.
func (c *Client) WithBackoffBase(base time.Duration) *Client {
	c.backoffBase = base
	return c
}

// Send executes the request, retrying transport-level failures up to
// req.MaxRetries additional times with exponential backoff (first retry after
// base, second after 2*base, doubling). Backoff sleeps are local to this
// call; concurrent requests are never blocked by another request's retries.
//
// When every attempt fails, Send returns one aggregated downstream error
// naming the attempt count and the last underlying error; intermediate
// failures surface only in debug logs.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	payload, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, services.WrapInternal("failed to encode request body", err)
	}

	attempts := req.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.backoffBase << (attempt - 2)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, services.WrapDownstream("request cancelled during backoff", ctx.Err())
			}
		}

		resp, err := c.attempt(ctx, req, payload, contentType)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.logger.Debug("outbound attempt failed",
			zap.String("url", req.URL),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return nil, services.WrapDownstream(
		fmt.Sprintf("all %d attempts failed", attempts), lastErr)
}

// attempt performs a single request under the call's timeout budget.
func (c *Client) attempt(ctx context.Context, req Request, payload []byte, contentType string) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	// Default the content type only when the caller has not set one.
	if payload != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Status:  httpResp.StatusCode,
		Headers: httpResp.Header,
		Data:    parseBody(respBody),
	}, nil
}

// encodeBody serializes the body to the wire format unless it is already a
// raw string.
func encodeBody(body interface{}) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(b), "text/plain", nil
	case []byte:
		return b, "application/octet-stream", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}

// parseBody opportunistically decodes JSON, falling back to the raw text.
func parseBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return string(body)
	}
	return parsed
}
