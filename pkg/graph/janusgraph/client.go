// Package janusgraph implements the graph.Transaction contract against
// JanusGraph's Gremlin Server HTTP endpoint: every operation is a single
// POST /gremlin script submission carrying a Gremlin-Groovy string plus a
// bindings map, decoded from the GraphSON 3.0 wire format JanusGraph
// returns.
package janusgraph

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

// Config addresses and optionally authenticates against one Gremlin
// Server instance fronting JanusGraph.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// api is the low-level Gremlin Server wrapper every Transaction call goes
// through. JanusGraph's HTTP Gremlin endpoint is sessionless: each request
// is its own implicit transaction, so api holds no transaction state.
type api struct {
	client *httpclient.Client
}

func newAPI(cfg Config) *api {
	baseURL := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	headers := map[string]string{}
	if cfg.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		headers["Authorization"] = "Basic " + auth
	}
	return &api{
		client: httpclient.New(httpclient.Config{
			BaseURL: baseURL,
			Headers: headers,
		}),
	}
}

// gremlinResponse is the Gremlin Server HTTP response envelope: a status
// block carrying the HTTP-equivalent code/message, and a result block
// whose "data" field holds the GraphSON 3.0-encoded traversal output.
type gremlinResponse struct {
	RequestID string `json:"requestId"`
	Status    struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Attrs   map[string]interface{} `json:"attributes"`
	} `json:"status"`
	Result struct {
		Data interface{}            `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	} `json:"result"`
}

// execute submits a Gremlin-Groovy script with its parameter bindings and
// returns the decoded response envelope.
func (a *api) execute(ctx context.Context, gremlin string, bindings map[string]interface{}) (*gremlinResponse, error) {
	if bindings == nil {
		bindings = map[string]interface{}{}
	}
	var resp gremlinResponse
	err := a.client.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		Path:   "/gremlin",
		Body: map[string]interface{}{
			"gremlin":  gremlin,
			"bindings": bindings,
		},
	}, &resp)
	if err != nil {
		return nil, asGraphError(err)
	}
	if resp.Status.Code >= 300 {
		return nil, mapGremlinStatus(resp.Status.Code, resp.Status.Message)
	}
	return &resp, nil
}

func (a *api) ping(ctx context.Context) error {
	_, err := a.execute(ctx, "g.V().limit(1).count()", nil)
	return err
}

// mapGremlinStatus translates a Gremlin Server response status code
// (these follow HTTP conventions: 401/403 auth, 497 malformed request,
// 598 script evaluation error) into a GraphError.
func mapGremlinStatus(code int, message string) *adapter.GraphError {
	switch code {
	case 401:
		return adapter.NewGraphError("janusgraph", adapter.GraphAuthenticationFailed, code, message, nil)
	case 403:
		return adapter.NewGraphError("janusgraph", adapter.GraphAuthorizationFailed, code, message, nil)
	case 497, 598:
		return adapter.NewGraphError("janusgraph", adapter.GraphInvalidQuery, code, message, nil)
	default:
		return adapter.NewGraphError("janusgraph", adapter.GraphInternalError, code, message, nil)
	}
}

func mapError(status int, body []byte) *adapter.GraphError {
	switch status {
	case 401:
		return adapter.NewGraphError("janusgraph", adapter.GraphAuthenticationFailed, status, "authentication failed", nil)
	case 403:
		return adapter.NewGraphError("janusgraph", adapter.GraphAuthorizationFailed, status, "authorization failed", nil)
	default:
		return adapter.NewGraphError("janusgraph", adapter.GraphInternalError, status, fmt.Sprintf("janusgraph error: %s", string(body)), nil)
	}
}

func asGraphError(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*httpclient.StatusError); ok {
		return mapError(se.StatusCode, se.Body)
	}
	return adapter.NewGraphError("janusgraph", adapter.GraphConnectionFailed, 0, "request failed", err)
}
