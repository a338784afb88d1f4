package index

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"
)

// SearchOptions configures a CSS search.
type SearchOptions struct {
	Query      string
	KeyGlob    string // doublestar glob over keys, ':' as separator
	MaxResults int
}

// CSSSearchResult holds the matching rules of one cached stylesheet.
type CSSSearchResult struct {
	Key   string
	Rules []RuleMatch
}

// RuleMatch is one compiled CSS rule containing the search term.
type RuleMatch struct {
	Index int // 1-based position of the rule in the stylesheet
	Text  string
}

// Search performs a full-text search across all compiled stylesheets.
// Query format:
//   - Plain text: match query (word-level matching)
//   - "quoted text": phrase query (exact phrase match)
//   - /regex/: regexp query
func (ci *CSSIndex) Search(options SearchOptions) ([]CSSSearchResult, int, error) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}

	var keyGlob string
	if options.KeyGlob != "" {
		keyGlob = keyToGlobPath(options.KeyGlob)
		if !doublestar.ValidatePattern(keyGlob) {
			return nil, 0, fmt.Errorf("invalid key glob: %s", options.KeyGlob)
		}
	}

	matchRule, err := ruleMatcher(options.Query)
	if err != nil {
		return nil, 0, err
	}

	searchRequest := bleve.NewSearchRequest(buildQuery(options.Query))
	searchRequest.Size = options.MaxResults * 5 // over-fetch, results are filtered below
	searchRequest.Fields = []string{"key", "syntax"}

	searchResults, err := ci.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	var results []CSSSearchResult
	totalMatches := 0
	for _, hit := range searchResults.Hits {
		key := hit.ID
		css, ok := ci.css[key]
		if !ok {
			continue
		}
		if keyGlob != "" {
			matched, matchErr := doublestar.Match(keyGlob, keyToGlobPath(key))
			if matchErr != nil || !matched {
				continue
			}
		}

		rules := findMatchingRules(css, matchRule)
		if len(rules) == 0 {
			continue
		}
		totalMatches += len(rules)
		results = append(results, CSSSearchResult{Key: key, Rules: rules})

		if len(results) >= options.MaxResults {
			break
		}
	}

	return results, totalMatches, nil
}

// buildQuery parses the query string into a Bleve query on the css field.
// Regex queries must match a whole indexed term, and terms are lowercase.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if isRegexQuery(queryString) {
		q := bleve.NewRegexpQuery(queryString[1 : len(queryString)-1])
		q.SetField(cssField)
		return q
	}
	if isPhraseQuery(queryString) {
		q := bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
		q.SetField(cssField)
		return q
	}
	q := bleve.NewMatchQuery(queryString)
	q.SetField(cssField)
	return q
}

// ruleMatcher returns the predicate used to pick matching rules out of a hit.
func ruleMatcher(queryString string) (func(string) bool, error) {
	queryString = strings.TrimSpace(queryString)

	if isRegexQuery(queryString) {
		re, err := regexp.Compile("(?i)" + queryString[1:len(queryString)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid regex query: %w", err)
		}
		return re.MatchString, nil
	}

	term := queryString
	if isPhraseQuery(queryString) {
		term = queryString[1 : len(queryString)-1]
	}
	termLower := strings.ToLower(term)
	return func(rule string) bool {
		return strings.Contains(strings.ToLower(rule), termLower)
	}, nil
}

// findMatchingRules splits compressed CSS into rules at '}' and keeps those
// accepted by match.
func findMatchingRules(css string, match func(string) bool) []RuleMatch {
	var matches []RuleMatch
	for i, rule := range splitRules(css) {
		if match(rule) {
			matches = append(matches, RuleMatch{Index: i + 1, Text: rule})
		}
	}
	return matches
}

func splitRules(css string) []string {
	parts := strings.SplitAfter(strings.TrimSpace(css), "}")
	rules := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			rules = append(rules, part)
		}
	}
	return rules
}

func isRegexQuery(q string) bool {
	return strings.HasPrefix(q, "/") && strings.HasSuffix(q, "/") && len(q) > 2
}

func isPhraseQuery(q string) bool {
	return strings.HasPrefix(q, "\"") && strings.HasSuffix(q, "\"") && len(q) > 2
}
