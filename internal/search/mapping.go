package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for catalog documents.
// Titles and names use the English analyzer with term vectors for
// highlighting; type, ISBN and genre slugs are keywords; year and creation
// time are numeric for range queries and sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	textField := func(name, analyzer string, store, vectors bool) {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = analyzer
		f.Store = store
		f.IncludeTermVectors = vectors
		docMapping.AddFieldMappingsAt(name, f)
	}
	numericField := func(name string) {
		f := bleve.NewNumericFieldMapping()
		f.Store = true
		docMapping.AddFieldMappingsAt(name, f)
	}

	// Full text.
	textField("name", en.AnalyzerName, true, true)
	textField("author", en.AnalyzerName, true, true)
	textField("description", en.AnalyzerName, false, false)
	textField("biography", en.AnalyzerName, false, false)
	textField("nationality", simple.Name, true, false)

	// Keywords.
	textField("id", keyword.Name, false, false)
	textField("type", keyword.Name, true, false)
	textField("isbn", keyword.Name, true, false)
	textField("genre_slugs", keyword.Name, true, false)

	numericField("year")
	numericField("created_at")

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
