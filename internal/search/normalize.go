package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"simplesearch/internal/engine"
	"simplesearch/internal/models"
)

const (
	snippetWidth    = 360
	snippetEllipsis = "…"

	documentIDSeparator = "::"

	// Timing values below this cutoff are treated as seconds and scaled to
	// milliseconds; values at or above it pass through as milliseconds.
	// Known approximation: a genuine sub-10ms millisecond reading is
	// indistinguishable from a seconds reading and gets scaled too.
	latencySecondsCutoff = 10
)

// normalizeResponse reshapes the engine's raw response into a SearchResult.
// Every field it touches is optional upstream, so each access degrades to a
// default instead of failing the request.
func normalizeResponse(raw engine.RawResponse) *models.SearchResult {
	root := mapValue(raw, "root")
	children := sliceValue(root, "children")

	hits := make([]models.Hit, 0, len(children))
	for _, child := range children {
		entry, ok := child.(map[string]interface{})
		if !ok {
			continue
		}
		hits = append(hits, formatHit(entry))
	}

	total, _ := extractTotalHits(raw)

	return &models.SearchResult{
		Hits:           hits,
		TotalAvailable: total,
		LatencyMs:      extractLatency(raw),
		Coverage:       mapValue(root, "coverage"),
	}
}

func formatHit(hit map[string]interface{}) models.Hit {
	fields := mapValue(hit, "fields")

	text := stringValue(fields, "text")
	snippet := makeSnippet(text)

	// The engine's composite id lives in the field map when the document
	// was fed with one; the hit-level id is the fallback.
	var engineID interface{}
	if s := stringValue(fields, "documentid"); s != "" {
		engineID = s
	} else if v, ok := hit["id"]; ok {
		engineID = v
	}

	display := stringPtr(fields, "id")
	if display == nil || *display == "" {
		display = normalizeDocumentID(engineID)
	}

	var relevance float64
	if f, ok := floatValue(hit, "relevance"); ok {
		relevance = f
	}
	relevance = math.Round(relevance*10000) / 10000

	var textOut *string
	if text != "" {
		textOut = &text
	}

	return models.Hit{
		ID:               display,
		DocumentID:       display,
		EngineDocumentID: engineID,
		Sddocname:        stringPtr(fields, "sddocname"),
		Source:           stringPtr(hit, "source"),
		URL:              stringPtr(fields, "url"),
		Text:             textOut,
		Snippet:          snippet,
		Relevance:        relevance,
		Fields:           fields,
	}
}

// normalizeDocumentID derives a short display id from the engine's composite
// document id ("id:namespace:doctype::localid"). Non-string ids yield nil;
// an empty tail after the separator keeps the whole id.
func normalizeDocumentID(id interface{}) *string {
	s, ok := id.(string)
	if !ok {
		return nil
	}
	if idx := strings.LastIndex(s, documentIDSeparator); idx >= 0 {
		tail := s[idx+len(documentIDSeparator):]
		if tail == "" {
			return &s
		}
		return &tail
	}
	return &s
}

// makeSnippet collapses whitespace runs to single spaces and shortens the
// text to at most snippetWidth runes, cutting at word boundaries with a
// trailing ellipsis. A single word longer than the budget is cut mid-word.
func makeSnippet(text string) string {
	words := strings.Fields(text)
	collapsed := strings.Join(words, " ")
	if utf8.RuneCountInString(collapsed) <= snippetWidth {
		return collapsed
	}

	budget := snippetWidth - utf8.RuneCountInString(snippetEllipsis)

	var b strings.Builder
	length := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		need := wordLen
		if length > 0 {
			need++
		}
		if length+need > budget {
			break
		}
		if length > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		length += need
	}

	if length == 0 {
		runes := []rune(words[0])
		return string(runes[:budget]) + snippetEllipsis
	}
	return b.String() + snippetEllipsis
}

// extractTotalHits reads the engine-reported total count, falling back to
// the number of child entries. The boolean reports whether either source was
// present at all.
func extractTotalHits(raw engine.RawResponse) (int64, bool) {
	root := mapValue(raw, "root")
	fields := mapValue(root, "fields")
	if f, ok := floatValue(fields, "totalCount"); ok {
		return int64(f), true
	}
	if children, ok := root["children"].([]interface{}); ok {
		return int64(len(children)), true
	}
	return 0, false
}

// extractLatency reads the engine timing (preferring "total", falling back
// to "querytime") and normalizes it to milliseconds rounded to 3 decimals
// using the latencySecondsCutoff heuristic.
func extractLatency(raw engine.RawResponse) float64 {
	timing := mapValue(raw, "timing")

	value, ok := floatValue(timing, "total")
	if !ok || value == 0 {
		if q, qok := floatValue(timing, "querytime"); qok {
			value, ok = q, true
		}
	}
	if !ok {
		return 0.0
	}

	if value < latencySecondsCutoff {
		value *= 1000
	}
	return math.Round(value*1000) / 1000
}

// mapValue returns m[key] as a map, or an empty map when the key is absent
// or holds a different type.
func mapValue(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok && v != nil {
		return v
	}
	return map[string]interface{}{}
}

func sliceValue(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key].([]interface{}); ok {
		return v
	}
	return nil
}

func stringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringPtr(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

func floatValue(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
