package neo4j

import (
	"context"
	"fmt"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// schemaManager implements graph.SchemaManager against Neo4j's
// CREATE/DROP INDEX and SHOW INDEXES Cypher surface.
type schemaManager struct {
	api *api
}

// indexTypeFor maps an IndexKind onto the Cypher index type keyword.
// Neo4j has no separate "Exact" index type the way ArangoDB's hash index
// does — RANGE or TEXT both cover exact lookups, so anything that isn't
// fulltext or geo falls back to RANGE.
func indexTypeFor(kind adapter.IndexKind) string {
	switch kind {
	case adapter.IndexFulltext:
		return "TEXT"
	case adapter.IndexGeo:
		return "POINT"
	default:
		return "RANGE"
	}
}

func (s *schemaManager) run(ctx context.Context, cypher string) error {
	txURL, err := s.api.beginTransaction(ctx)
	if err != nil {
		return err
	}
	if _, err := s.api.executeInTransaction(ctx, txURL, []statement{{Statement: cypher, Parameters: map[string]interface{}{}}}); err != nil {
		_ = s.api.rollbackTransaction(ctx, txURL)
		return err
	}
	return s.api.commitTransaction(ctx, txURL)
}

// CreateIndex mirrors "CREATE <TYPE> INDEX <name> IF NOT EXISTS FOR
// (n:Label) ON (n.prop1, n.prop2)".
func (s *schemaManager) CreateIndex(ctx context.Context, collection string, spec adapter.IndexSpec) error {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("idx_%s", collection)
	}
	propsClause := ""
	for i, f := range spec.Fields {
		if i > 0 {
			propsClause += ", "
		}
		propsClause += "n." + f
	}
	query := fmt.Sprintf("CREATE %s INDEX %s IF NOT EXISTS FOR (n:%s) ON (%s)", indexTypeFor(spec.Kind), name, collection, propsClause)
	return s.run(ctx, query)
}

// DropIndex mirrors "DROP INDEX <name> IF EXISTS".
func (s *schemaManager) DropIndex(ctx context.Context, collection, name string) error {
	return s.run(ctx, fmt.Sprintf("DROP INDEX %s IF EXISTS", name))
}

// ListIndexes mirrors "SHOW INDEXES", reading the fixed column layout
// the original relies on: name at [1], type at [4], labels at [6],
// properties at [7], and a non-null entry at [9] marking uniqueness.
func (s *schemaManager) ListIndexes(ctx context.Context, collection string) ([]adapter.IndexSpec, error) {
	txURL, err := s.api.beginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	env, err := s.api.executeInTransaction(ctx, txURL, []statement{{Statement: "SHOW INDEXES", Parameters: map[string]interface{}{}}})
	if err != nil {
		_ = s.api.rollbackTransaction(ctx, txURL)
		return nil, err
	}
	if err := s.api.commitTransaction(ctx, txURL); err != nil {
		return nil, err
	}

	out := make([]adapter.IndexSpec, 0)
	if len(env.Results) == 0 {
		return out, nil
	}
	for _, d := range env.Results[0].Data {
		row := d.Row
		if len(row) < 10 {
			continue
		}
		name, _ := row[1].(string)
		typeStr, _ := row[4].(string)

		var fields []string
		if propsArr, ok := row[7].([]interface{}); ok {
			for _, p := range propsArr {
				if ps, ok := p.(string); ok {
					fields = append(fields, ps)
				}
			}
		}

		var kind adapter.IndexKind
		switch typeStr {
		case "RANGE":
			kind = adapter.IndexSkiplist
		case "TEXT":
			kind = adapter.IndexFulltext
		case "POINT":
			kind = adapter.IndexGeo
		default:
			continue
		}
		if row[9] != nil {
			kind = adapter.IndexUnique
		}

		out = append(out, adapter.IndexSpec{Kind: kind, Fields: fields, Name: name})
	}
	return out, nil
}

// CreateLabel is a no-op: unlike ArangoDB's document collections, a
// Neo4j label needs no prior declaration — it comes into existence the
// moment a node is created with it.
func (s *schemaManager) CreateLabel(ctx context.Context, label string) error {
	return nil
}
