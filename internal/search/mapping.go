package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Indexed document fields. Searchable entity fields are nested under
// fieldText and fieldExact by their own name, so a search can be limited to
// some of them.
const (
	fieldCollection = "collection"
	fieldEntityID   = "entity_id"
	fieldText       = "text"
	fieldExact      = "exact"
)

// buildIndexMapping indexes each searchable field twice: stemmed English
// text for match queries, and lowercase unstemmed tokens for prefix and
// fuzzy queries. Collection and id are exact keywords.
func buildIndexMapping(searchable []string) mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	collection := bleve.NewTextFieldMapping()
	collection.Analyzer = keyword.Name
	doc.AddFieldMappingsAt(fieldCollection, collection)

	entityID := bleve.NewTextFieldMapping()
	entityID.Analyzer = keyword.Name
	entityID.Store = true
	doc.AddFieldMappingsAt(fieldEntityID, entityID)

	text := bleve.NewDocumentStaticMapping()
	exact := bleve.NewDocumentStaticMapping()
	for _, name := range searchable {
		stemmed := bleve.NewTextFieldMapping()
		stemmed.Analyzer = en.AnalyzerName
		text.AddFieldMappingsAt(name, stemmed)

		plain := bleve.NewTextFieldMapping()
		plain.Analyzer = simple.Name
		exact.AddFieldMappingsAt(name, plain)
	}
	doc.AddSubDocumentMapping(fieldText, text)
	doc.AddSubDocumentMapping(fieldExact, exact)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}

func nested(parent, field string) string {
	return parent + "." + field
}
