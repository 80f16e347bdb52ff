package models

type SearchRequest struct {
	Query   string      `json:"query" binding:"required"`
	Limit   interface{} `json:"limit"`
	Ranking string      `json:"ranking"`
}

// Hit is one matched document, reshaped from the engine's raw hit entry.
// Pointer fields serialize as null when the engine omitted the value.
type Hit struct {
	ID               *string                `json:"id"`
	DocumentID       *string                `json:"document_id"`
	EngineDocumentID interface{}            `json:"engine_document_id"`
	Sddocname        *string                `json:"sddocname"`
	Source           *string                `json:"source"`
	URL              *string                `json:"url"`
	Text             *string                `json:"text"`
	Snippet          string                 `json:"snippet"`
	Relevance        float64                `json:"relevance"`
	Fields           map[string]interface{} `json:"fields"`
}

// SearchResult is the stable response shape for POST /search.
type SearchResult struct {
	Query          string                 `json:"query"`
	Hits           []Hit                  `json:"hits"`
	Returned       int                    `json:"returned"`
	Limit          int                    `json:"limit"`
	TotalAvailable int64                  `json:"total_available"`
	LatencyMs      float64                `json:"latency_ms"`
	Coverage       map[string]interface{} `json:"coverage"`
	RankingProfile string                 `json:"ranking_profile"`
}

type RankingProfile struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RankingProfiles lists the rank profiles deployed with the engine schema.
var RankingProfiles = []RankingProfile{
	{Value: "bm25", Label: "BM25 (text + url)"},
	{Value: "bm25_text_only", Label: "BM25 (text only)"},
	{Value: "bm25_url_only", Label: "BM25 (url only)"},
	{Value: "bm25_comb_tuned", Label: "BM25 combined (tuned k1/b)"},
}

func IsKnownRankingProfile(name string) bool {
	for _, p := range RankingProfiles {
		if p.Value == name {
			return true
		}
	}
	return false
}

// HomeResponse is the landing payload served on GET /.
type HomeResponse struct {
	Service               string           `json:"service"`
	DefaultLimit          int              `json:"default_limit"`
	MaxLimit              int              `json:"max_limit"`
	TotalDocuments        *int64           `json:"total_documents"`
	RankingProfiles       []RankingProfile `json:"ranking_profiles"`
	DefaultRankingProfile string           `json:"default_ranking_profile"`
}
