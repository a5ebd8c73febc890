// Package domain contains core domain types for the manual chat backend.
package domain

// Passage is a fixed excerpt of a manual, stored together with its
// precomputed embedding vector. Passages are immutable after corpus load.
type Passage struct {
	ID        int       `json:"id"`
	Manual    string    `json:"manual"`
	Section   string    `json:"section"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

// ScoredPassage pairs a passage with its cosine similarity against a query.
// Scores are unclamped; a zero-magnitude vector on either side yields -Inf.
type ScoredPassage struct {
	Passage
	Score float64 `json:"score"`
}

// Citation identifies a passage included in a generated answer's context.
// Citations are ordered by rank, matching the [source i] labels in the prompt.
type Citation struct {
	ID      int    `json:"id"`
	Manual  string `json:"manual"`
	Section string `json:"section"`
}

// QuotaDecision is the ledger's verdict on consuming one unit of a user's
// daily allowance. It is authoritative; this service never recomputes it.
type QuotaDecision struct {
	Allowed    bool `json:"allowed"`
	DailyLimit int  `json:"daily_limit"`
	UsedToday  int  `json:"used_today"`
}
