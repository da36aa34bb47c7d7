package models

// AnswerRequest is the HTTP request body for POST /v1/answers.
// Question and context are untrusted; the optional fields override the
// server's QA defaults for this request only.
type AnswerRequest struct {
	Question            string   `json:"question"`
	Context             string   `json:"context"`
	Model               string   `json:"model,omitzero"`
	Temperature         *float64 `json:"temperature,omitzero"`
	MaxContextChars     *int     `json:"max_context_chars,omitzero"`
	RateLimitIdentifier string   `json:"rate_limit_identifier,omitzero"`
}

// AnswerResponse is the HTTP response body for a successful answer.
type AnswerResponse struct {
	Answer    string `json:"answer"`
	Model     string `json:"model"`
	RequestID string `json:"request_id"`
	ElapsedMs int64  `json:"elapsed_ms"`
	CacheTier string `json:"cache_tier,omitzero"`
}
