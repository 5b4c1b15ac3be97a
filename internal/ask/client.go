// Package ask talks to the external /ask endpoint.
package ask

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RichardoC/envask/internal/models"
)

// Path is the endpoint path on the answering server.
const Path = "/ask"

// ErrMalformedReply is returned when the response body is not JSON.
var ErrMalformedReply = errors.New("malformed reply")

// Result is the outcome of one successful exchange. A missing answer
// property is not an error: Answer is empty and HasAnswer is false.
type Result struct {
	Answer     string
	HasAnswer  bool
	StatusCode int
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. to share a transport in
// tests. The client is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout bounds each exchange. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// New returns a client posting to serverURL + Path.
func New(serverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", serverURL)
	}

	c := &Client{
		endpoint:   strings.TrimRight(u.String(), "/") + Path,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ask sends {"query": query} and decodes the answer property of the reply.
// Like a browser fetch, an HTTP error status is not treated as a failure;
// the body is decoded regardless and StatusCode records what came back.
func (c *Client) Ask(ctx context.Context, query string) (Result, error) {
	payload, err := json.Marshal(models.Question{Query: query})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to send question: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{StatusCode: resp.StatusCode}, fmt.Errorf("failed to read reply: %w", err)
	}

	if !json.Valid(body) {
		return Result{StatusCode: resp.StatusCode}, fmt.Errorf("%w: status %d", ErrMalformedReply, resp.StatusCode)
	}

	// Valid JSON that is not an object (a bare string, an array) simply has
	// no answer property.
	var reply models.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return Result{StatusCode: resp.StatusCode}, fmt.Errorf("%w: status %d: %v", ErrMalformedReply, resp.StatusCode, err)
		}
		reply = models.Reply{}
	}

	answer, ok := reply.Text()
	return Result{
		Answer:     answer,
		HasAnswer:  ok,
		StatusCode: resp.StatusCode,
	}, nil
}
