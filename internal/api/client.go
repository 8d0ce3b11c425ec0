// Package api is the gateway to the remote storefront REST API. It attaches
// authentication, normalizes the server's heterogeneous response shapes and
// maps HTTP failures onto the client error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/state"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	state   *state.Container
	breaker *gobreaker.CircuitBreaker[httpResult]
	log     *zap.Logger

	// onUnauthorized runs after a 401 has cleared the session, so the shell
	// can route the user to a login entry point.
	onUnauthorized func()
}

type httpResult struct {
	status int
	body   []byte
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, st *state.Container, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		state: st,
		log:   zap.NewNop(),
	}
	c.breaker = gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
		Name: "storefront-api",
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one round trip with a JSON body. A non-2xx status comes back
// as *Error; 401 additionally clears the session and fires the unauthorized
// hook. On success the body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.roundTrip(req, out)
}

func (c *Client) roundTrip(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.state.Token(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.breaker.Execute(func() (httpResult, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return httpResult{}, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{}, fmt.Errorf("read response: %w", err)
		}
		r := httpResult{status: resp.StatusCode, body: data}
		if resp.StatusCode >= http.StatusInternalServerError {
			// Server faults count toward tripping the breaker.
			return r, errorFromResult(r)
		}
		return r, nil
	})
	if err != nil && res.status == 0 {
		c.log.Warn("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if err != nil {
		return err
	}

	if res.status == http.StatusUnauthorized {
		if clearErr := c.state.ClearSession(req.Context()); clearErr != nil {
			c.log.Warn("session clear failed", zap.Error(clearErr))
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return errorFromResult(res)
	}
	if res.status < http.StatusOK || res.status >= http.StatusMultipleChoices {
		return errorFromResult(res)
	}

	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorFromResult probes the usual message fields and the field-keyed errors
// map; a body that is not structured JSON degrades to "HTTP <status>".
func errorFromResult(r httpResult) *Error {
	apiErr := &Error{Status: r.status}

	var payload struct {
		Message string              `json:"message"`
		Err     string              `json:"error"`
		Detail  string              `json:"detail"`
		Errors  map[string][]string `json:"errors"`
	}
	if json.Unmarshal(r.body, &payload) == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Err != "":
			apiErr.Message = payload.Err
		case payload.Detail != "":
			apiErr.Message = payload.Detail
		}
		apiErr.Fields = payload.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", r.status)
	}
	return apiErr
}
