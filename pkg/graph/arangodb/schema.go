package arangodb

import (
	"context"
	"fmt"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

// schemaManager implements graph.SchemaManager against ArangoDB's
// /_api/index and /_api/collection endpoints.
type schemaManager struct {
	api *api
}

// indexTypeFor maps an IndexKind onto the ArangoDB index "type" string:
// hash and composite get the general-purpose persistent index, fulltext
// maps to ArangoDB's inverted index (its successor to the deprecated
// "fulltext" type), and geo maps straight across.
func indexTypeFor(kind adapter.IndexKind) string {
	switch kind {
	case adapter.IndexFulltext:
		return "inverted"
	case adapter.IndexGeo:
		return "geo"
	default:
		return "persistent"
	}
}

func (s *schemaManager) CreateIndex(ctx context.Context, collection string, spec adapter.IndexSpec) error {
	name := spec.Name
	if name == "" {
		field := ""
		if len(spec.Fields) > 0 {
			field = spec.Fields[0]
		}
		name = fmt.Sprintf("idx_%s_%s", collection, field)
	}

	body := map[string]interface{}{
		"type":   indexTypeFor(spec.Kind),
		"fields": spec.Fields,
		"name":   name,
	}
	if spec.Kind == adapter.IndexUnique {
		body["unique"] = true
	}

	var env arangoEnvelope
	err := s.api.client.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		Path:   "/_api/index",
		Query:  queryWithCollection(collection),
		Body:   body,
	}, &env)
	return asGraphError(err)
}

func (s *schemaManager) DropIndex(ctx context.Context, collection, name string) error {
	id, err := s.findIndexID(ctx, collection, name)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	var env arangoEnvelope
	derr := s.api.client.DoJSON(ctx, httpclient.Request{
		Method: "DELETE",
		Path:   "/_api/index/" + id,
	}, &env)
	return asGraphError(derr)
}

func (s *schemaManager) ListIndexes(ctx context.Context, collection string) ([]adapter.IndexSpec, error) {
	var env struct {
		Indexes []struct {
			ID     string   `json:"id"`
			Name   string   `json:"name"`
			Type   string   `json:"type"`
			Fields []string `json:"fields"`
			Unique bool     `json:"unique"`
		} `json:"indexes"`
	}
	err := s.api.client.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		Path:   "/_api/index",
		Query:  queryWithCollection(collection),
	}, &env)
	if err != nil {
		return nil, asGraphError(err)
	}

	out := make([]adapter.IndexSpec, 0, len(env.Indexes))
	for _, idx := range env.Indexes {
		kind := adapter.IndexHash
		switch idx.Type {
		case "geo":
			kind = adapter.IndexGeo
		case "inverted":
			kind = adapter.IndexFulltext
		case "persistent":
			if idx.Unique {
				kind = adapter.IndexUnique
			} else if len(idx.Fields) > 1 {
				kind = adapter.IndexComposite
			} else {
				kind = adapter.IndexSkiplist
			}
		}
		out = append(out, adapter.IndexSpec{Kind: kind, Fields: idx.Fields, Name: idx.Name})
	}
	return out, nil
}

func (s *schemaManager) findIndexID(ctx context.Context, collection, name string) (string, error) {
	indexes, err := s.listIndexesRaw(ctx, collection)
	if err != nil {
		return "", err
	}
	for _, idx := range indexes {
		if idx.Name == name {
			return idx.ID, nil
		}
	}
	return "", nil
}

func (s *schemaManager) listIndexesRaw(ctx context.Context, collection string) ([]struct {
	ID   string
	Name string
}, error) {
	var env struct {
		Indexes []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"indexes"`
	}
	err := s.api.client.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		Path:   "/_api/index",
		Query:  queryWithCollection(collection),
	}, &env)
	if err != nil {
		return nil, asGraphError(err)
	}
	out := make([]struct {
		ID   string
		Name string
	}, len(env.Indexes))
	for i, idx := range env.Indexes {
		out[i] = struct {
			ID   string
			Name string
		}{ID: idx.ID, Name: idx.Name}
	}
	return out, nil
}

// CreateLabel creates a vertex collection for the given label — ArangoDB
// has no separate "label" concept, so a label is modeled as a document
// collection the way the rest of this package already does.
func (s *schemaManager) CreateLabel(ctx context.Context, label string) error {
	return s.api.ensureCollectionExists(ctx, label, collectionKindVertex)
}

func queryWithCollection(collection string) map[string][]string {
	return map[string][]string{"collection": {collection}}
}
