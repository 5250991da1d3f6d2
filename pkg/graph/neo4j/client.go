// Package neo4j implements the graph.Transaction contract against
// Neo4j's transactional Cypher HTTP endpoint
// (/db/{database}/tx[/{id}][/commit]).
package neo4j

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

// Config addresses and authenticates against one Neo4j instance.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type api struct {
	client *httpclient.Client
	dbPath string
}

func newAPI(cfg Config) *api {
	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}
	dbPath := fmt.Sprintf("/db/%s", database)
	baseURL := fmt.Sprintf("http://%s:%d%s", cfg.Host, cfg.Port, dbPath)
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
	return &api{
		dbPath: dbPath,
		client: httpclient.New(httpclient.Config{
			BaseURL: baseURL,
			Headers: map[string]string{"Authorization": "Basic " + auth},
		}),
	}
}

func mapError(status int, body []byte) *adapter.GraphError {
	switch status {
	case 401:
		return adapter.NewGraphError("neo4j", adapter.GraphAuthenticationFailed, status, "authentication failed", nil)
	case 403:
		return adapter.NewGraphError("neo4j", adapter.GraphAuthorizationFailed, status, "authorization failed", nil)
	case 404:
		return adapter.NewGraphError("neo4j", adapter.GraphInternalError, status, "endpoint not found", nil)
	case 409:
		return adapter.NewGraphError("neo4j", adapter.GraphTransactionConflict, status, "transaction conflict", nil)
	default:
		return adapter.NewGraphError("neo4j", adapter.GraphInternalError, status, fmt.Sprintf("neo4j error: %s", string(body)), nil)
	}
}

func asGraphError(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*httpclient.StatusError); ok {
		return mapError(se.StatusCode, se.Body)
	}
	return adapter.NewGraphError("neo4j", adapter.GraphConnectionFailed, 0, "request failed", err)
}

type statement struct {
	Statement          string                 `json:"statement"`
	Parameters         map[string]interface{} `json:"parameters"`
	ResultDataContents []string               `json:"resultDataContents,omitempty"`
}

type txResponse struct {
	Commit  string `json:"commit"`
	Results []struct {
		Columns []string `json:"columns"`
		Data    []struct {
			Row   []interface{}   `json:"row"`
			Graph json.RawMessage `json:"graph"`
		} `json:"data"`
	} `json:"results"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (r *txResponse) firstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// beginTransaction opens an explicit transaction and returns its
// server-assigned URL, taken from the Location header Neo4j's
// transactional endpoint returns.
func (a *api) beginTransaction(ctx context.Context) (string, error) {
	resp, err := a.client.Do(ctx, httpclient.Request{
		Method: "POST",
		Path:   "/tx",
		Body:   map[string]interface{}{"statements": []statement{}},
	})
	if err != nil {
		return "", asGraphError(err)
	}
	if resp.StatusCode >= 400 {
		return "", mapError(resp.StatusCode, resp.Body)
	}
	location := resp.Headers.Get("Location")
	if location == "" {
		var env struct {
			Commit string `json:"commit"`
		}
		_ = json.Unmarshal(resp.Body, &env)
		if env.Commit == "" {
			return "", adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "missing transaction location", nil)
		}
		location = env.Commit
	}
	return location, nil
}

// executeInTransaction runs one or more Cypher statements against an
// already-open transaction URL and returns the decoded response. Every
// statement that names no result format asks for both "row" and "graph".
func (a *api) executeInTransaction(ctx context.Context, txURL string, statements []statement) (*txResponse, error) {
	path, err := a.relativePath(txURL)
	if err != nil {
		return nil, adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "invalid transaction url", err)
	}
	for i := range statements {
		if statements[i].ResultDataContents == nil {
			statements[i].ResultDataContents = []string{"row", "graph"}
		}
	}

	var env txResponse
	if derr := a.client.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		Path:   path,
		Body:   map[string]interface{}{"statements": statements},
	}, &env); derr != nil {
		return nil, asGraphError(derr)
	}
	if msg := env.firstError(); msg != "" {
		return nil, adapter.NewGraphError("neo4j", adapter.GraphInvalidQuery, 0, msg, nil)
	}
	return &env, nil
}

func (a *api) commitTransaction(ctx context.Context, txURL string) error {
	path, err := a.relativePath(txURL)
	if err != nil {
		return adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "invalid transaction url", err)
	}
	var env txResponse
	derr := a.client.DoJSON(ctx, httpclient.Request{Method: "POST", Path: path + "/commit"}, &env)
	if derr != nil {
		return asGraphError(derr)
	}
	if msg := env.firstError(); msg != "" {
		return adapter.NewGraphError("neo4j", adapter.GraphTransactionFailed, 0, msg, nil)
	}
	return nil
}

func (a *api) rollbackTransaction(ctx context.Context, txURL string) error {
	path, err := a.relativePath(txURL)
	if err != nil {
		return adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "invalid transaction url", err)
	}
	var env txResponse
	derr := a.client.DoJSON(ctx, httpclient.Request{Method: "DELETE", Path: path}, &env)
	return asGraphError(derr)
}

// ping checks connectivity and credentials by running a trivial query
// through the autocommit endpoint ("/tx/commit" with no prior "/tx"
// call opens and commits a transaction in one round trip).
func (a *api) ping(ctx context.Context) error {
	var env txResponse
	err := a.client.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		Path:   "/tx/commit",
		Body:   map[string]interface{}{"statements": []statement{{Statement: "RETURN 1"}}},
	}, &env)
	return asGraphError(err)
}

// relativePath turns a transaction URL Neo4j handed back (e.g. a Location
// header) into a path relative to this Client's base URL, by stripping
// the leading "/db/{database}" segment the Client's base URL already
// carries. The server may report a different host than the one this
// process dialed (behind a proxy, container networking), so only the
// path is used, and only the portion past the database segment.
func (a *api) relativePath(txURL string) (string, error) {
	u, err := url.Parse(txURL)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(u.Path, a.dbPath), nil
}
