package search

import "strings"

// italianStopwords are dropped during keyword extraction: articles,
// prepositions, and interrogatives that carry no retrieval signal.
var italianStopwords = map[string]bool{
	"il": true, "lo": true, "la": true, "i": true, "gli": true, "le": true,
	"un": true, "uno": true, "una": true,
	"di": true, "a": true, "da": true, "in": true, "con": true, "su": true,
	"per": true, "tra": true, "fra": true,
	"è": true, "sono": true, "sia": true, "come": true,
	"quale": true, "quali": true, "che": true, "cosa": true,
}

// extractKeywords lowercases the query, splits it on whitespace, and drops
// stopwords and tokens of one or two characters.
func extractKeywords(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) > 2 && !italianStopwords[w] {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

// keywordMatchScore is the fraction of keywords appearing in text,
// case-insensitively. Zero when there are no keywords.
func keywordMatchScore(text string, keywords []string) float32 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	return float32(matched) / float32(len(keywords))
}
