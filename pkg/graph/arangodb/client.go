// Package arangodb implements the graph.Transaction contract against
// ArangoDB's REST API: transactions over /_api/transaction, cursor
// execution over /_api/cursor, and collection/index management over
// /_api/collection and /_api/index.
package arangodb

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

// Config addresses and authenticates against one ArangoDB instance.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// api is the low-level REST wrapper every Transaction/SchemaManager call
// goes through. It holds no per-transaction state; the transaction ID is
// threaded through each call explicitly.
type api struct {
	client *httpclient.Client
}

func newAPI(cfg Config) *api {
	baseURL := fmt.Sprintf("http://%s:%d/_db/%s", cfg.Host, cfg.Port, cfg.Database)
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
	return &api{
		client: httpclient.New(httpclient.Config{
			BaseURL: baseURL,
			Headers: map[string]string{"Authorization": "Basic " + auth},
		}),
	}
}

// mapError translates an ArangoDB HTTP status and body into a GraphError,
// mirroring the original client's status-to-code table: 401/403 map to
// the auth codes, 404 to a generic internal error ("endpoint not found"
// is ambiguous between "collection missing" and "document missing"), 409
// to a transaction conflict, everything else to internal_error carrying
// the body text.
func mapError(status int, body []byte) *adapter.GraphError {
	switch status {
	case 401:
		return adapter.NewGraphError("arangodb", adapter.GraphAuthenticationFailed, status, "authentication failed", nil)
	case 403:
		return adapter.NewGraphError("arangodb", adapter.GraphAuthorizationFailed, status, "authorization failed", nil)
	case 404:
		return adapter.NewGraphError("arangodb", adapter.GraphInternalError, status, "endpoint not found", nil)
	case 409:
		return adapter.NewGraphError("arangodb", adapter.GraphTransactionConflict, status, "transaction conflict", nil)
	default:
		return adapter.NewGraphError("arangodb", adapter.GraphInternalError, status, fmt.Sprintf("arangodb error: %s", string(body)), nil)
	}
}

func asGraphError(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*httpclient.StatusError); ok {
		return mapError(se.StatusCode, se.Body)
	}
	return adapter.NewGraphError("arangodb", adapter.GraphConnectionFailed, 0, "request failed", err)
}

type arangoEnvelope struct {
	Error     bool            `json:"error"`
	Code      int             `json:"code"`
	ErrorNum  int             `json:"errorNum"`
	ErrorMsg  string          `json:"errorMessage"`
	Result    interface{}     `json:"result"`
	ID        string          `json:"id"`
}

// beginTransaction opens a stream transaction declaring read/write
// collection access and returns its server-assigned ID.
func (a *api) beginTransaction(ctx context.Context, readColls, writeColls []string) (string, error) {
	collections := map[string]interface{}{}
	if len(readColls) > 0 {
		collections["read"] = readColls
	}
	if len(writeColls) > 0 {
		collections["write"] = writeColls
	}

	var env arangoEnvelope
	err := a.client.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		Path:   "/_api/transaction/begin",
		Body:   map[string]interface{}{"collections": collections},
	}, &env)
	if err != nil {
		return "", asGraphError(err)
	}

	result, ok := env.Result.(map[string]interface{})
	if !ok {
		return "", adapter.NewGraphError("arangodb", adapter.GraphInternalError, 0, "missing transaction id in begin response", nil)
	}
	id, _ := result["id"].(string)
	if id == "" {
		return "", adapter.NewGraphError("arangodb", adapter.GraphInternalError, 0, "empty transaction id", nil)
	}
	return id, nil
}

func (a *api) commitTransaction(ctx context.Context, txID string) error {
	var env arangoEnvelope
	err := a.client.DoJSON(ctx, httpclient.Request{
		Method: "PUT",
		Path:   "/_api/transaction/" + txID,
	}, &env)
	return asGraphError(err)
}

func (a *api) rollbackTransaction(ctx context.Context, txID string) error {
	var env arangoEnvelope
	err := a.client.DoJSON(ctx, httpclient.Request{
		Method: "DELETE",
		Path:   "/_api/transaction/" + txID,
	}, &env)
	return asGraphError(err)
}

// executeInTransaction runs an AQL query bound to an open transaction and
// returns the decoded "result" array of the cursor response.
func (a *api) executeInTransaction(ctx context.Context, txID, query string, bindVars map[string]interface{}) ([]interface{}, error) {
	var env arangoEnvelope
	err := a.client.DoJSON(ctx, httpclient.Request{
		Method:  "POST",
		Path:    "/_api/cursor",
		Headers: map[string]string{"x-arango-trx-id": txID},
		Body: map[string]interface{}{
			"query":    query,
			"bindVars": bindVars,
		},
	}, &env)
	if err != nil {
		return nil, asGraphError(err)
	}

	result, ok := env.Result.([]interface{})
	if !ok {
		return nil, adapter.NewGraphError("arangodb", adapter.GraphInternalError, 0, "expected array in AQL response", nil)
	}
	return result, nil
}

func (a *api) ping(ctx context.Context) error {
	var env map[string]interface{}
	err := a.client.DoJSON(ctx, httpclient.Request{Method: "GET", Path: "/_api/version"}, &env)
	return asGraphError(err)
}

// collectionKind mirrors ArangoDB's numeric collection "type" field: 2 is
// a document (vertex) collection, 3 is an edge collection.
const (
	collectionKindVertex = 2
	collectionKindEdge   = 3
)

type collectionInfo struct {
	Name     string `json:"name"`
	Type     int    `json:"type"`
	IsSystem bool   `json:"isSystem"`
}

// ensureCollectionExists idempotently creates a collection, tolerating a
// "duplicate name" conflict from a prior create.
func (a *api) ensureCollectionExists(ctx context.Context, name string, kind int) error {
	var env arangoEnvelope
	err := a.client.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		Path:   "/_api/collection",
		Body:   map[string]interface{}{"name": name, "type": kind},
	}, &env)
	if err == nil {
		return nil
	}
	if se, ok := err.(*httpclient.StatusError); ok && se.StatusCode == 409 {
		return nil
	}
	return asGraphError(err)
}

// listCollections returns every non-system collection, used by
// delete_vertex(delete_edges=true) to discover edge collections to scan.
func (a *api) listCollections(ctx context.Context) ([]collectionInfo, error) {
	var env struct {
		Result []collectionInfo `json:"result"`
	}
	err := a.client.DoJSON(ctx, httpclient.Request{Method: "GET", Path: "/_api/collection"}, &env)
	if err != nil {
		return nil, asGraphError(err)
	}
	out := env.Result[:0]
	for _, c := range env.Result {
		if !c.IsSystem {
			out = append(out, c)
		}
	}
	return out, nil
}
