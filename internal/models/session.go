package models

import "time"

// Subject categories the classifier may assign.
const (
	SubjectCoding   = "coding"
	SubjectHistory  = "history"
	SubjectScience  = "science"
	SubjectMath     = "math"
	SubjectLanguage = "language"
	SubjectArt      = "art"
	SubjectBusiness = "business"
	SubjectOther    = "other"
	SubjectUnknown  = "unknown"
)

// SubjectInfo is the structured classification of a transcript. It is
// always fully populated: detection failures substitute the unknown
// default instead of leaving fields empty.
type SubjectInfo struct {
	Subject  string   `json:"subject"`
	Topic    string   `json:"topic"`
	Level    string   `json:"level"` // "beginner" | "intermediate" | "advanced" | "unknown"
	Concepts []string `json:"concepts"`
}

// UnknownSubject is the degraded classification used when detection fails.
// The topic carries the failure reason as a diagnostic.
func UnknownSubject(reason string) SubjectInfo {
	return SubjectInfo{
		Subject:  SubjectUnknown,
		Topic:    reason,
		Level:    "unknown",
		Concepts: []string{},
	}
}

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// TranscriptSegment is one timed caption entry. Timing is carried through
// as provided by the source and never interpreted.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Session is the per-video learning context. The ID is the canonical
// YouTube video ID and doubles as the store key. ChatHistory is
// append-only; SuggestedQuestions is replaced wholesale on regeneration.
type Session struct {
	ID                 string              `json:"session_id"`
	SourceURL          string              `json:"url"`
	Transcript         string              `json:"transcript"`
	Segments           []TranscriptSegment `json:"transcript_segments"`
	Subject            SubjectInfo         `json:"subject"`
	ChatHistory        []ChatMessage       `json:"chat_history"`
	SuggestedQuestions []string            `json:"suggested_questions"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}
