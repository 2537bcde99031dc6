package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gr1shq/showdesk/internal/models"
)

const (
	suggestionCount          = 5
	suggestionExcerptLimit   = 1500
	contextualMessageWindow  = 4
	contextualContentPreview = 100
)

// initialFallback is the generic list used when initial generation fails.
var initialFallback = []string{
	"Can you explain the main concept?",
	"How does this work in practice?",
	"What are the key points I should remember?",
	"Can you give me another example?",
	"What's the most important thing to understand?",
}

// contextualFallbacks are subject-keyed degraded suggestion lists. Any
// subject without an entry falls back to the coding list. These lists are
// user-visible contract, not placeholders.
var contextualFallbacks = map[string][]string{
	models.SubjectCoding: {
		"How can I use this in my own project?",
		"What are common mistakes to avoid?",
		"Are there alternative approaches?",
		"Can you show me a more complex example?",
		"How does this relate to other concepts?",
	},
	models.SubjectHistory: {
		"What happened next?",
		"How did this impact modern times?",
		"What were the long-term effects?",
		"Who opposed this and why?",
		"Are there any interesting details I should know?",
	},
	models.SubjectLanguage: {
		"Can you give me more practice examples?",
		"What are common mistakes learners make?",
		"How is this used in everyday conversation?",
		"Are there any exceptions to this rule?",
		"Can you explain the cultural context?",
	},
	models.SubjectScience: {
		"What are the practical applications?",
		"How does this connect to what I already know?",
		"What are some common misconceptions?",
		"Can you explain this with an analogy?",
		"What would happen if...?",
	},
}

// SuggestionService produces suggested next questions, always exactly 5.
type SuggestionService struct {
	gen TextGenerator
	log *logrus.Logger
}

func NewSuggestionService(gen TextGenerator, log *logrus.Logger) *SuggestionService {
	return &SuggestionService{gen: gen, log: log}
}

// GenerateInitial builds the first suggestion list when content is
// analyzed. Falls back to a fixed generic list on any failure.
func (s *SuggestionService) GenerateInitial(ctx context.Context, transcript string, subject models.SubjectInfo) []string {
	prompt := buildInitialSuggestionsPrompt(truncate(transcript, suggestionExcerptLimit), subject)

	questions, ok := s.generateList(ctx, prompt)
	if !ok {
		return append([]string(nil), initialFallback...)
	}
	return questions
}

// GenerateContextual builds a fresh list from the trailing conversation.
// The transcript is accepted for interface symmetry with GenerateInitial
// but does not feed the prompt; the conversation is the context here.
// Falls back to the subject-keyed table on any failure; subjects without
// their own list use the coding one.
func (s *SuggestionService) GenerateContextual(ctx context.Context, transcript string, subject models.SubjectInfo, history []models.ChatMessage) []string {
	prompt := buildContextualSuggestionsPrompt(subject, history)

	questions, ok := s.generateList(ctx, prompt)
	if !ok {
		return ContextualFallback(subject.Subject)
	}
	return questions
}

// ContextualFallback returns the degraded list for a subject.
func ContextualFallback(subject string) []string {
	list, ok := contextualFallbacks[subject]
	if !ok {
		list = contextualFallbacks[models.SubjectCoding]
	}
	return append([]string(nil), list...)
}

// generateList runs the prompt and normalizes the result to exactly 5
// strings. A short list counts as a failed parse.
func (s *SuggestionService) generateList(ctx context.Context, prompt string) ([]string, bool) {
	raw, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.log.WithError(err).Warn("suggestion generation call failed")
		return nil, false
	}

	value, ok := ExtractJSON(raw)
	if !ok {
		s.log.WithField("response", raw).Warn("suggestion response was not JSON")
		return nil, false
	}

	var questions []string
	if err := json.Unmarshal(value, &questions); err != nil {
		s.log.WithField("response", raw).Warn("suggestion response was not a string array")
		return nil, false
	}

	if len(questions) < suggestionCount {
		s.log.WithField("count", len(questions)).Warn("suggestion response too short")
		return nil, false
	}
	return questions[:suggestionCount], true
}

func buildInitialSuggestionsPrompt(excerpt string, subject models.SubjectInfo) string {
	return fmt.Sprintf(`Based on this educational content, generate 5 example questions a student might want to ask.

SUBJECT: %s
TOPIC: %s
LEVEL: %s

CONTENT PREVIEW:
%s

Generate questions that:
1. Help understand key concepts
2. Clarify confusing parts
3. Connect to real-world applications
4. Are natural and conversational
5. Are appropriate for the subject (%s)

Examples for coding: "How does this work?", "Why use this instead of X?", "Can you show a simpler example?"
Examples for history: "What caused this?", "Who were the key figures?", "How did this affect...?"
Examples for language: "How do I pronounce this?", "When do I use this grammar?", "Can you give more examples?"
Examples for science: "Why does this happen?", "What's a real-world example?", "How does this relate to...?"

Return ONLY a JSON array of 5 questions, nothing else:
["Question 1", "Question 2", "Question 3", "Question 4", "Question 5"]`,
		subject.Subject, subject.Topic, subject.Level, excerpt, subject.Subject)
}

func buildContextualSuggestionsPrompt(subject models.SubjectInfo, history []models.ChatMessage) string {
	var recent strings.Builder
	if len(history) > 0 {
		recent.WriteString("RECENT CONVERSATION:\n")
		start := len(history) - contextualMessageWindow
		if start < 0 {
			start = 0
		}
		for _, msg := range history[start:] {
			role := "Assistant"
			if msg.Role == "user" {
				role = "Student"
			}
			recent.WriteString(fmt.Sprintf("%s: %s...\n", role, truncate(msg.Content, contextualContentPreview)))
		}
	}

	return fmt.Sprintf(`Based on the learning conversation so far, suggest 5 new questions the student might want to ask next.

SUBJECT: %s
TOPIC: %s

%s

Generate questions that:
1. Build on what they've already asked
2. Deepen understanding
3. Explore related concepts
4. Help them apply the knowledge
5. Are natural follow-ups

Return ONLY a JSON array of 5 questions:
["Question 1", "Question 2", "Question 3", "Question 4", "Question 5"]`,
		subject.Subject, subject.Topic, recent.String())
}
