package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gr1shq/showdesk/internal/models"
)

func fiveQuestions() string {
	return `["q1","q2","q3","q4","q5"]`
}

func TestGenerateInitialAlwaysFive(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"clean array", fiveQuestions(), nil},
		{"fenced array", "```json\n" + fiveQuestions() + "\n```", nil},
		{"seven questions truncated", `["q1","q2","q3","q4","q5","q6","q7"]`, nil},
		{"three questions falls back", `["q1","q2","q3"]`, nil},
		{"object instead of array", `{"questions":["q1"]}`, nil},
		{"prose", "here are some questions", nil},
		{"provider error", "", errors.New("boom")},
	}

	subject := models.SubjectInfo{Subject: "coding", Topic: "Go", Level: "beginner", Concepts: []string{}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeTextGenerator{response: tc.response, err: tc.err}
			s := NewSuggestionService(gen, testLogger())

			questions := s.GenerateInitial(context.Background(), "transcript", subject)
			if len(questions) != 5 {
				t.Errorf("Expected exactly 5 questions, got %d", len(questions))
			}
		})
	}
}

func TestGenerateInitialFallbackList(t *testing.T) {
	gen := &fakeTextGenerator{response: "not json"}
	s := NewSuggestionService(gen, testLogger())

	questions := s.GenerateInitial(context.Background(), "transcript", models.UnknownSubject("n/a"))
	if !reflect.DeepEqual(questions, initialFallback) {
		t.Errorf("Expected generic fallback list, got %v", questions)
	}
}

func TestGenerateContextualFallbackTable(t *testing.T) {
	tests := []struct {
		subject  string
		wantList string
	}{
		{"coding", "coding"},
		{"history", "history"},
		{"language", "language"},
		{"science", "science"},
		{"unknown", "coding"},
		{"math", "coding"},
		{"art", "coding"},
		{"business", "coding"},
		{"other", "coding"},
	}

	for _, tc := range tests {
		t.Run(tc.subject, func(t *testing.T) {
			got := ContextualFallback(tc.subject)
			want := contextualFallbacks[tc.wantList]
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Expected %s fallback for subject %q, got %v", tc.wantList, tc.subject, got)
			}
		})
	}
}

// The table contract in one line: unknown falls back to the coding list.
func TestContextualFallbackUnknownEqualsCoding(t *testing.T) {
	if !reflect.DeepEqual(ContextualFallback("unknown"), ContextualFallback("coding")) {
		t.Error("Expected unknown subject fallback to equal coding fallback")
	}
}

func TestGenerateContextualUsesFallbackOnFailure(t *testing.T) {
	gen := &fakeTextGenerator{err: errors.New("boom")}
	s := NewSuggestionService(gen, testLogger())

	subject := models.SubjectInfo{Subject: "history", Topic: "WW2", Level: "beginner", Concepts: []string{}}
	questions := s.GenerateContextual(context.Background(), "transcript", subject, nil)

	if !reflect.DeepEqual(questions, contextualFallbacks["history"]) {
		t.Errorf("Expected history fallback, got %v", questions)
	}
}

func TestContextualPromptWindowsHistory(t *testing.T) {
	gen := &fakeTextGenerator{response: fiveQuestions()}
	s := NewSuggestionService(gen, testLogger())

	history := []models.ChatMessage{
		{Role: "user", Content: "oldest question"},
		{Role: "assistant", Content: "oldest answer"},
		{Role: "user", Content: "q-a"},
		{Role: "assistant", Content: "a-a"},
		{Role: "user", Content: "q-b"},
		{Role: "assistant", Content: strings.Repeat("x", 300)},
	}

	subject := models.SubjectInfo{Subject: "coding", Topic: "Go", Level: "beginner", Concepts: []string{}}
	s.GenerateContextual(context.Background(), "transcript", subject, history)

	prompt := gen.prompts[0]
	if strings.Contains(prompt, "oldest question") {
		t.Error("Expected only the last 4 messages in the prompt")
	}
	if !strings.Contains(prompt, "Student: q-a") {
		t.Error("Expected user messages labeled Student")
	}
	if !strings.Contains(prompt, "Assistant: "+strings.Repeat("x", 100)+"...") {
		t.Error("Expected message content truncated to 100 characters with ellipsis")
	}
	if strings.Contains(prompt, strings.Repeat("x", 101)) {
		t.Error("Expected no more than 100 characters of any message")
	}
}
