// Package httpclient is the common request/response plumbing shared by
// every provider adapter: URL assembly, JSON and raw-body requests,
// streaming responses, and a per-request signing hook used by backends
// that must compute a fresh signature (AWS SigV4, provider JWTs) against
// the final, fully-assembled request rather than a cached header.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHTTPClient is a shared *http.Client with connection-pool
// defaults tuned for many short-lived API calls to a handful of hosts.
var DefaultHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Signer mutates an outgoing *http.Request immediately before it is sent,
// after the body has been read into memory so the signer can hash it.
// Used for AWS SigV4 and for providers that sign over the exact request
// being issued rather than a static bearer token.
type Signer func(req *http.Request, body []byte) error

// Client wraps an *http.Client with a base URL, default headers, and an
// optional per-request Signer. It carries no other mutable state, so a
// single Client is safe to share across concurrent requests even when a
// Signer is set: the Signer receives its own request and body per call.
type Client struct {
	http    *http.Client
	baseURL string
	headers map[string]string
	signer  Signer
}

// Config configures a new Client.
type Config struct {
	BaseURL    string
	Headers    map[string]string
	Timeout    time.Duration
	HTTPClient *http.Client
	Signer     Signer
}

// New builds a Client from Config.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		if cfg.Timeout > 0 {
			hc = &http.Client{
				Timeout: cfg.Timeout,
				Transport: &http.Transport{
					MaxIdleConns:        100,
					MaxIdleConnsPerHost: 10,
					IdleConnTimeout:     90 * time.Second,
				},
			}
		} else {
			hc = DefaultHTTPClient
		}
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Client{http: hc, baseURL: cfg.BaseURL, headers: headers, signer: cfg.Signer}
}

// Request describes one outgoing call. Body is JSON-marshaled unless
// RawBody is set, in which case RawBody is sent verbatim and Body is
// ignored — used for multipart payloads and raw audio uploads.
type Request struct {
	Method      string
	Path        string
	Headers     map[string]string
	Body        interface{}
	RawBody     []byte
	ContentType string
	Query       url.Values
}

// Response is a fully-buffered HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// StatusError is returned by DoJSON and DoStream when the server replies
// with a status code of 400 or above.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, string(e.Body))
}

// HTTPStatusCode satisfies retry.HTTPStatusCoder so callers can classify
// retryability without this package depending on the retry package.
func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + path
	if len(query) == 0 {
		return full
	}
	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + query.Encode()
}

func (c *Client) buildBody(req Request) ([]byte, string, error) {
	if req.RawBody != nil {
		return req.RawBody, req.ContentType, nil
	}
	if req.Body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("httpclient: marshal request body: %w", err)
	}
	return b, "application/json", nil
}

// Do issues the request and returns the fully-buffered response. The
// caller is responsible for interpreting StatusCode; Do itself never
// returns an error for a non-2xx response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	bodyBytes, contentType, err := c.buildBody(req)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if bodyBytes != nil {
		bodyReader = bytes.NewReader(bodyBytes)
	}

	fullURL := c.buildURL(req.Path, req.Query)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if c.signer != nil {
		if err := c.signer(httpReq, bodyBytes); err != nil {
			return nil, fmt.Errorf("httpclient: sign request: %w", err)
		}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpclient: do request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read response body: %w", err)
	}

	return &Response{StatusCode: httpResp.StatusCode, Headers: httpResp.Header, Body: respBody}, nil
}

// DoJSON issues the request and decodes a JSON response into result.
// A response with status 400 or above is returned as a *StatusError.
func (c *Client) DoJSON(ctx context.Context, req Request, result interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if result == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return fmt.Errorf("httpclient: decode response body: %w", err)
	}
	return nil
}

// DoStream issues the request and returns the live *http.Response for the
// caller to stream from. The caller must close Body. A response with
// status 400 or above is buffered and returned as a *StatusError instead.
func (c *Client) DoStream(ctx context.Context, req Request) (*http.Response, error) {
	bodyBytes, contentType, err := c.buildBody(req)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if bodyBytes != nil {
		bodyReader = bytes.NewReader(bodyBytes)
	}

	fullURL := c.buildURL(req.Path, req.Query)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if c.signer != nil {
		if err := c.signer(httpReq, bodyBytes); err != nil {
			return nil, fmt.Errorf("httpclient: sign request: %w", err)
		}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpclient: do request: %w", err)
	}
	if httpResp.StatusCode >= 400 {
		defer httpResp.Body.Close()
		errBody, _ := io.ReadAll(httpResp.Body)
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: errBody}
	}
	return httpResp, nil
}

// Post issues a POST with a JSON-marshaled body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// PostJSON issues a POST with a JSON body and decodes a JSON result.
func (c *Client) PostJSON(ctx context.Context, path string, body, result interface{}) error {
	return c.DoJSON(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// GetJSON issues a GET request and decodes a JSON result.
func (c *Client) GetJSON(ctx context.Context, path string, result interface{}) error {
	return c.DoJSON(ctx, Request{Method: http.MethodGet, Path: path}, result)
}

// SetHeader sets a default header applied to every future request made
// through this Client. Callers that need a per-request credential
// (e.g. a freshly minted JWT) should use a Signer instead of SetHeader,
// since SetHeader mutates shared state under concurrent use.
func (c *Client) SetHeader(key, value string) {
	if c.headers == nil {
		c.headers = make(map[string]string)
	}
	c.headers[key] = value
}

// SetBaseURL updates the base URL used for future requests.
func (c *Client) SetBaseURL(baseURL string) { c.baseURL = baseURL }

// WithSigner returns a shallow copy of the Client with its Signer
// replaced, leaving the original Client (and any concurrent caller using
// it) unaffected. This is how a provider attaches a per-call Authorization
// token without racing on shared header state.
func (c *Client) WithSigner(signer Signer) *Client {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return &Client{http: c.http, baseURL: c.baseURL, headers: headers, signer: signer}
}
