package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"golang.org/x/text/cases"
)

// Search returns the ids of entities of type t whose fields match text,
// best match first. At most limit ids are returned.
func (s *Index) Search(ctx context.Context, t domain.EntityType, text string, fields []string, limit int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(fields) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	req := bleve.NewSearchRequestOptions(buildQuery(t.Collection(), text, fields), limit, 0, false)
	req.Fields = []string{fieldEntityID}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if id, ok := hit.Fields[fieldEntityID].(string); ok {
			ids = append(ids, id)
			continue
		}
		_, id, _ := strings.Cut(hit.ID, "/")
		ids = append(ids, id)
	}
	return ids, nil
}

// buildQuery matches stemmed text, tolerates one typo per term, and treats
// the last term as a prefix so partially typed names still match.
func buildQuery(collection, text string, fields []string) query.Query {
	kind := bleve.NewTermQuery(collection)
	kind.SetField(fieldCollection)

	terms := strings.Fields(cases.Fold().String(text))
	var alternatives []query.Query
	for _, f := range fields {
		match := bleve.NewMatchQuery(text)
		match.SetField(nested(fieldText, f))
		match.SetBoost(3)
		alternatives = append(alternatives, match)

		for _, term := range terms {
			fuzzy := bleve.NewFuzzyQuery(term)
			fuzzy.SetField(nested(fieldExact, f))
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(0.8)
			alternatives = append(alternatives, fuzzy)
		}
		if last := terms[len(terms)-1]; len(last) >= 2 {
			prefix := bleve.NewPrefixQuery(last)
			prefix.SetField(nested(fieldExact, f))
			prefix.SetBoost(0.5)
			alternatives = append(alternatives, prefix)
		}
	}

	return bleve.NewConjunctionQuery(kind, bleve.NewDisjunctionQuery(alternatives...))
}
