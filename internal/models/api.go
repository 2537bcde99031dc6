package models

// Request/response shapes for the HTTP surface. Field names match the
// public API contract.

type AnalyzeContentRequest struct {
	URL string `json:"url"`
}

type AnalyzeContentResponse struct {
	Success            bool        `json:"success"`
	SessionID          string      `json:"session_id"`
	Subject            SubjectInfo `json:"subject"`
	SuggestedQuestions []string    `json:"suggested_questions"`
	Message            string      `json:"message"`
	TranscriptPreview  string      `json:"transcript_preview"`
}

type ChatRequest struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	Screenshot string `json:"screenshot,omitempty"` // base64 image, optional
}

type ChatResponse struct {
	Success      bool          `json:"success"`
	Response     string        `json:"response"`
	ChatHistory  []ChatMessage `json:"chat_history"`
	MessageCount int           `json:"message_count"`
}

type GenerateSuggestionsRequest struct {
	SessionID string `json:"session_id"`
}

type GenerateSuggestionsResponse struct {
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
}

type SessionResponse struct {
	SessionID          string      `json:"session_id"`
	Subject            SubjectInfo `json:"subject"`
	MessageCount       int         `json:"message_count"`
	SuggestedQuestions []string    `json:"suggested_questions"`
	URL                string      `json:"url"`
}

type HistoryResponse struct {
	SessionID   string        `json:"session_id"`
	ChatHistory []ChatMessage `json:"chat_history"`
	Subject     SubjectInfo   `json:"subject"`
}

// APIError is the body of every error response.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
