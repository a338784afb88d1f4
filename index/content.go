package index

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	regexptokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	cssField     = "css"
	cssAnalyzer  = "css"
	cssTokenizer = "css_terms"
)

// cssTermPattern splits compressed CSS into selector names, properties and
// values. Punctuation such as "{", ":" and ";" separates terms; a leading "."
// is dropped while dots inside numbers are kept (".link", "1.5em").
const cssTermPattern = `[A-Za-z0-9_#%-]+(?:\.[A-Za-z0-9_#%-]+)*`

// CSSIndex provides full-text search over compiled CSS using a Bleve in-memory index.
// It mirrors the Store and is rebuilt after every compile pass.
type CSSIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	// css stores compiled output for rule-level result extraction
	css map[string]string // key: cache key, value: compiled CSS
}

// NewCSSIndex creates a new in-memory Bleve index for compiled stylesheets.
func NewCSSIndex() (*CSSIndex, error) {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, err
	}
	bleveIndex, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}

	return &CSSIndex{
		index: bleveIndex,
		css:   make(map[string]string),
	}, nil
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	CSS    string `json:"css"`
	Key    string `json:"key"`
	Syntax string `json:"syntax"`
}

// buildIndexMapping creates the Bleve index mapping for compiled CSS.
// The standard analyzer keeps "color:blue" as one token, so the css field
// uses its own tokenizer.
func buildIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomTokenizer(cssTokenizer, map[string]interface{}{
		"type":   regexptokenizer.Name,
		"regexp": cssTermPattern,
	})
	if err != nil {
		return nil, fmt.Errorf("registering css tokenizer: %w", err)
	}
	err = indexMapping.AddCustomAnalyzer(cssAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     cssTokenizer,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("registering css analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()

	cssFieldMapping := bleve.NewTextFieldMapping()
	cssFieldMapping.Analyzer = cssAnalyzer
	cssFieldMapping.Store = false // kept in css map instead
	cssFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(cssField, cssFieldMapping)

	keyFieldMapping := bleve.NewKeywordFieldMapping()
	keyFieldMapping.Store = true
	keyFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("key", keyFieldMapping)

	syntaxFieldMapping := bleve.NewKeywordFieldMapping()
	syntaxFieldMapping.Store = true
	syntaxFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("syntax", syntaxFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping, nil
}

// Replace rebuilds the index from a snapshot of entries. Later entries with a
// duplicate key overwrite earlier ones, matching Store.Replace.
func (ci *CSSIndex) Replace(entries []*Entry) error {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return err
	}
	newIndex, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return fmt.Errorf("creating bleve index: %w", err)
	}

	css := make(map[string]string, len(entries))
	batch := newIndex.NewBatch()
	for _, entry := range entries {
		css[entry.Key] = entry.CSS
		doc := bleveDocument{CSS: entry.CSS, Key: entry.Key, Syntax: entry.Syntax}
		if err := batch.Index(entry.Key, doc); err != nil {
			newIndex.Close()
			return fmt.Errorf("indexing %s: %w", entry.Key, err)
		}
	}
	if err := newIndex.Batch(batch); err != nil {
		newIndex.Close()
		return fmt.Errorf("applying index batch: %w", err)
	}

	ci.mu.Lock()
	old := ci.index
	ci.index = newIndex
	ci.css = css
	ci.mu.Unlock()

	if err := old.Close(); err != nil {
		return fmt.Errorf("closing old index: %w", err)
	}
	return nil
}

// DocumentCount returns the number of documents in the Bleve index.
func (ci *CSSIndex) DocumentCount() uint64 {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	count, _ := ci.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ci *CSSIndex) Close() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.index.Close()
}
