package engine

// QueryRequest is the JSON body posted to the engine's /search/ endpoint.
type QueryRequest struct {
	YQL     string `json:"yql"`
	Query   string `json:"query,omitempty"`
	Hits    int    `json:"hits"`
	Ranking string `json:"ranking,omitempty"`
	Timing  bool   `json:"presentation.timing"`
}

// RawResponse is the engine's response body decoded without schema
// assumptions. Every field in it is optional upstream.
type RawResponse map[string]interface{}
