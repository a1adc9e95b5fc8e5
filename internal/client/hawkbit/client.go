package hawkbit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/foundriesio/hawkbit-publish/internal/config"
	"github.com/foundriesio/hawkbit-publish/internal/logger"
	"github.com/foundriesio/hawkbit-publish/internal/version"
)

const (
	contentTypeJSON = "application/json"

	// maxErrorBody bounds how much of an error response is kept for messages.
	maxErrorBody = 4096
)

// Endpoints are the collection URLs of the management API.
type Endpoints struct {
	SoftwareModules  string
	DistributionSets string
	Rollouts         string
}

// Client wraps the management API with convenience helpers.
type Client struct {
	// http performs requests with retries on transient failures.
	http *retryablehttp.Client
	// endpoints are the collection URLs new records are posted to.
	endpoints Endpoints

	username string
	password string

	// callTimeout bounds a single request attempt.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets the timeout of a single request attempt.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithCredentials sets the basic auth credentials.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithRetryMax sets how often transient failures are retried.
func WithRetryMax(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.http.RetryMax = retries
		}
	}
}

// WithRetryWait sets the bounds of the retry backoff.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. with an httptest one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.HTTPClient = hc
		}
	}
}

var errEndpointRequired = errors.New("endpoint must be provided")

// New creates a client for the given endpoints. The context logger receives retry notices.
func New(ctx context.Context, endpoints Endpoints, opts ...Option) (*Client, error) {
	if endpoints.SoftwareModules == "" || endpoints.DistributionSets == "" || endpoints.Rollouts == "" {
		return nil, errEndpointRequired
	}

	rc := retryablehttp.NewClient()
	rc.Logger = logger.NewRetryLogger(ctx)
	rc.RetryMax = config.DefaultRetryMax
	rc.CheckRetry = retryPolicy
	// Hand the last response back instead of a generic "giving up" error
	// so the caller can report its status code.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		http:        rc,
		endpoints:   endpoints,
		username:    config.DefaultUsername,
		password:    config.DefaultPassword,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.http.HTTPClient.Timeout = client.callTimeout

	return client, nil
}

// NewFromConfig creates a client from publisher settings.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	endpoints := Endpoints{
		SoftwareModules:  cfg.SoftwareModulesURL,
		DistributionSets: cfg.DistributionSetsURL,
		Rollouts:         cfg.RolloutsURL,
	}

	base := []Option{
		WithCredentials(cfg.Username, cfg.Password),
		WithCallTimeout(cfg.Timeout),
		WithRetryMax(cfg.RetryMax),
	}

	return New(ctx, endpoints, append(base, opts...)...)
}

// retryPolicy is the default policy except that a 500 is final. Creation
// calls are not idempotent and hawkBit answers 500 for rejected payloads.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusInternalServerError {
		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// request describes one management API call.
type request struct {
	op          string
	method      string
	url         string
	body        []byte
	contentType string
	expected    []int
}

// jsonRequest marshals payload into a request body.
func jsonRequest(op, method, url string, payload any, expected ...int) (*request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Op: op, StatusCode: NoStatus, Message: "encode request", Err: err}
	}

	return &request{
		op:          op,
		method:      method,
		url:         url,
		body:        body,
		contentType: contentTypeJSON,
		expected:    expected,
	}, nil
}

// do sends the request and returns the response body when the status is expected.
func (c *Client) do(ctx context.Context, r *request) ([]byte, error) {
	var rawBody any
	if r.body != nil {
		rawBody = r.body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, r.method, r.url, rawBody)
	if err != nil {
		return nil, &APIError{Op: r.op, StatusCode: NoStatus, Message: "build request", Err: err}
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", uuid.NewString())

	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	logger.DebugKV(ctx, "Sending request", "op", r.op, "method", r.method, "url", r.url)

	resp, err := c.http.Do(req)
	if resp != nil {
		defer func() {
			_ = resp.Body.Close()
		}()
	}

	if err != nil {
		return nil, &APIError{Op: r.op, StatusCode: NoStatus, Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Op: r.op, StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	logger.DebugKV(ctx, "Received response", "op", r.op, "status", resp.StatusCode, "bytes", len(body))

	if !slices.Contains(r.expected, resp.StatusCode) {
		return nil, unexpectedStatus(r.op, resp.StatusCode, body)
	}

	if payload, ok := decodeErrorPayload(body); ok {
		return nil, &APIError{
			Op:         r.op,
			StatusCode: resp.StatusCode,
			ErrorCode:  payload.ErrorCode,
			Message:    payload.Message,
			Err:        ErrServerError,
		}
	}

	return body, nil
}

// doJSON sends the request and decodes the response body into out.
func (c *Client) doJSON(ctx context.Context, r *request, out any) error {
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(body, out); err != nil {
		return &APIError{Op: r.op, StatusCode: NoStatus, Message: "decode response", Err: err}
	}

	return nil
}

// unexpectedStatus builds the error for a status the operation did not expect,
// keeping the hawkBit error code and message when the body carries them.
func unexpectedStatus(op string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Op:         op,
		StatusCode: status,
		Err:        ErrUnexpectedStatus,
	}

	if payload, ok := decodeErrorPayload(body); ok {
		apiErr.ErrorCode = payload.ErrorCode
		apiErr.Message = payload.Message

		return apiErr
	}

	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	apiErr.Message = string(bytes.TrimSpace(body))

	return apiErr
}

// decodeErrorPayload reports whether body is a hawkBit error object.
func decodeErrorPayload(body []byte) (*errorPayload, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var payload errorPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil || payload.ErrorCode == "" {
		return nil, false
	}

	return &payload, true
}

// missingField reports a response lacking an expected field.
func missingField(op, field string) *APIError {
	return &APIError{
		Op:         op,
		StatusCode: NoStatus,
		Message:    fmt.Sprintf("no %q in response", field),
		Err:        ErrMissingField,
	}
}
