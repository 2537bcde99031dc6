package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gr1shq/showdesk/internal/models"
	"github.com/gr1shq/showdesk/internal/repository"
)

// fakeGenerator implements Generator and records which path was taken.
type fakeGenerator struct {
	response   string
	err        error
	textCalls  int
	imageCalls int
	lastPrompt string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.textCalls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) GenerateWithImage(ctx context.Context, prompt, imageBase64 string) (string, error) {
	f.imageCalls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return "", errors.New("not implemented")
}

type fakeTranscriptSource struct {
	videoID    string
	transcript string
	fetchErr   error
}

func (f *fakeTranscriptSource) ExtractVideoID(url string) (string, error) {
	if f.videoID == "" {
		return "", &InvalidInputError{Message: "Invalid YouTube URL"}
	}
	return f.videoID, nil
}

func (f *fakeTranscriptSource) FetchTranscript(videoID string) (string, []models.TranscriptSegment, error) {
	if f.fetchErr != nil {
		return "", nil, f.fetchErr
	}
	return f.transcript, []models.TranscriptSegment{{Text: f.transcript}}, nil
}

func (f *fakeTranscriptSource) DownloadAudio(videoURL string) ([]byte, string, error) {
	return nil, "", errors.New("no audio")
}

func newTestTutor(gen *fakeGenerator, source *fakeTranscriptSource) (*TutorService, repository.SessionStore) {
	log := testLogger()
	store := repository.NewMemorySessionStore()
	subjectGen := &fakeTextGenerator{response: `{"subject":"coding","topic":"Go basics","level":"beginner","concepts":["goroutines","channels"]}`}
	suggestionGen := &fakeTextGenerator{response: fiveQuestions()}

	tutor := NewTutorService(
		gen,
		gen,
		source,
		NewSubjectClassifier(subjectGen, log),
		NewSuggestionService(suggestionGen, log),
		store,
		log,
	)
	return tutor, store
}

func seedSession(t *testing.T, store repository.SessionStore, history []models.ChatMessage) *models.Session {
	t.Helper()
	session := &models.Session{
		ID:         "ABC123",
		SourceURL:  "https://www.youtube.com/watch?v=ABC123",
		Transcript: "goroutines are lightweight threads managed by the Go runtime",
		Subject: models.SubjectInfo{
			Subject: "coding", Topic: "Go basics", Level: "beginner",
			Concepts: []string{"goroutines", "channels"},
		},
		ChatHistory:        history,
		SuggestedQuestions: []string{"a", "b", "c", "d", "e"},
	}
	if err := store.Put(context.Background(), session); err != nil {
		t.Fatalf("Failed to seed session: %v", err)
	}
	return session
}

func TestAnalyzeCreatesSession(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	source := &fakeTranscriptSource{videoID: "ABC123", transcript: strings.Repeat("w", 500)}
	tutor, store := newTestTutor(gen, source)

	resp, err := tutor.Analyze(context.Background(), "https://www.youtube.com/watch?v=ABC123")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if resp.SessionID != "ABC123" {
		t.Errorf("Expected session ID ABC123, got %q", resp.SessionID)
	}
	if resp.Subject.Subject != "coding" {
		t.Errorf("Expected detected subject coding, got %q", resp.Subject.Subject)
	}
	if len(resp.SuggestedQuestions) != 5 {
		t.Errorf("Expected 5 suggested questions, got %d", len(resp.SuggestedQuestions))
	}
	if resp.TranscriptPreview != strings.Repeat("w", 200)+"..." {
		t.Errorf("Expected 200-char preview with ellipsis, got %d chars", len(resp.TranscriptPreview))
	}

	session, err := store.Get(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("Expected session in store: %v", err)
	}
	if len(session.ChatHistory) != 0 {
		t.Errorf("Expected empty chat history, got %d messages", len(session.ChatHistory))
	}
}

func TestAnalyzeInvalidURL(t *testing.T) {
	tutor, store := newTestTutor(&fakeGenerator{}, &fakeTranscriptSource{})

	_, err := tutor.Analyze(context.Background(), "https://example.com/not-a-video")

	var inputErr *InvalidInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("Expected InvalidInputError, got %v", err)
	}

	// No session may exist after a failed analyze
	if _, err := store.Get(context.Background(), ""); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Errorf("Expected no session created, got %v", err)
	}
}

func TestChatAppendsTwoMessagesInOrder(t *testing.T) {
	gen := &fakeGenerator{response: "Goroutines run concurrently."}
	tutor, store := newTestTutor(gen, &fakeTranscriptSource{})
	seedSession(t, store, []models.ChatMessage{{Role: "user", Content: "hi"}})

	resp, err := tutor.Chat(context.Background(), "ABC123", "what is a goroutine?", "")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.MessageCount != 3 {
		t.Errorf("Expected message count 3, got %d", resp.MessageCount)
	}
	if len(resp.ChatHistory) != 3 {
		t.Fatalf("Expected history of length 3, got %d", len(resp.ChatHistory))
	}
	if resp.ChatHistory[1].Role != "user" || resp.ChatHistory[1].Content != "what is a goroutine?" {
		t.Errorf("Expected 2nd entry to be the new user message, got %+v", resp.ChatHistory[1])
	}
	if resp.ChatHistory[2].Role != "assistant" || resp.ChatHistory[2].Content != "Goroutines run concurrently." {
		t.Errorf("Expected 3rd entry to be the assistant reply, got %+v", resp.ChatHistory[2])
	}

	// Mutation must be visible to a later read
	session, _ := store.Get(context.Background(), "ABC123")
	if len(session.ChatHistory) != 3 {
		t.Errorf("Expected persisted history of length 3, got %d", len(session.ChatHistory))
	}
}

func TestChatProviderFailureIsInlineReply(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	tutor, store := newTestTutor(gen, &fakeTranscriptSource{})
	seedSession(t, store, nil)

	resp, err := tutor.Chat(context.Background(), "ABC123", "hello", "")
	if err != nil {
		t.Fatalf("Expected degraded success, got error: %v", err)
	}

	if !strings.HasPrefix(resp.Response, "Error:") {
		t.Errorf("Expected visible inline error reply, got %q", resp.Response)
	}
	if len(resp.ChatHistory) != 2 {
		t.Errorf("Expected history to still grow by 2, got %d", len(resp.ChatHistory))
	}
	if resp.ChatHistory[1].Role != "assistant" {
		t.Errorf("Expected error reply recorded as assistant turn, got %q", resp.ChatHistory[1].Role)
	}
}

func TestChatScreenshotDispatch(t *testing.T) {
	tests := []struct {
		name       string
		screenshot string
		wantImage  int
		wantText   int
	}{
		{"no screenshot", "", 0, 1},
		{"placeholder screenshot", strings.Repeat("x", 50), 0, 1},
		{"real screenshot", strings.Repeat("x", 500), 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{response: "ok"}
			tutor, store := newTestTutor(gen, &fakeTranscriptSource{})
			seedSession(t, store, nil)

			if _, err := tutor.Chat(context.Background(), "ABC123", "look at this", tc.screenshot); err != nil {
				t.Fatalf("Chat failed: %v", err)
			}

			if gen.imageCalls != tc.wantImage {
				t.Errorf("Expected %d image calls, got %d", tc.wantImage, gen.imageCalls)
			}
			if gen.textCalls != tc.wantText {
				t.Errorf("Expected %d text calls, got %d", tc.wantText, gen.textCalls)
			}
		})
	}
}

func TestChatPromptLayers(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	tutor, store := newTestTutor(gen, &fakeTranscriptSource{})

	history := make([]models.ChatMessage, 0, 8)
	for i := 0; i < 4; i++ {
		history = append(history,
			models.ChatMessage{Role: "user", Content: "question-" + string(rune('a'+i))},
			models.ChatMessage{Role: "assistant", Content: "answer-" + string(rune('a'+i))},
		)
	}
	seedSession(t, store, history)

	if _, err := tutor.Chat(context.Background(), "ABC123", "current question", ""); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	prompt := gen.lastPrompt
	for _, want := range []string{
		"LEARNING CONTEXT:",
		"- Subject: coding",
		"- Topic: Go basics",
		"Key Concepts: goroutines, channels",
		"TUTORIAL/VIDEO CONTENT",
		"PREVIOUS CONVERSATION:",
		"CURRENT USER MESSAGE: current question",
		"2-4 paragraphs max",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}

	// Only the trailing 6 messages appear
	if strings.Contains(prompt, "question-a") || strings.Contains(prompt, "answer-a") {
		t.Error("Expected oldest exchange to be excluded from the prompt")
	}
	if !strings.Contains(prompt, "User: question-b") {
		t.Error("Expected trailing history formatted with User: labels")
	}
}

func TestChatSessionNotFound(t *testing.T) {
	tutor, _ := newTestTutor(&fakeGenerator{response: "ok"}, &fakeTranscriptSource{})

	_, err := tutor.Chat(context.Background(), "missing", "hi", "")

	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestRegenerateSuggestionsReplacesList(t *testing.T) {
	tutor, store := newTestTutor(&fakeGenerator{response: "ok"}, &fakeTranscriptSource{})
	seedSession(t, store, nil)

	suggestions, err := tutor.RegenerateSuggestions(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("RegenerateSuggestions failed: %v", err)
	}
	if len(suggestions) != 5 {
		t.Errorf("Expected 5 suggestions, got %d", len(suggestions))
	}

	session, _ := store.Get(context.Background(), "ABC123")
	if session.SuggestedQuestions[0] != suggestions[0] {
		t.Error("Expected new suggestions persisted on the session")
	}
}

func TestDeleteSession(t *testing.T) {
	tutor, store := newTestTutor(&fakeGenerator{}, &fakeTranscriptSource{})
	seedSession(t, store, nil)

	if err := tutor.DeleteSession(context.Background(), "ABC123"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := store.Get(context.Background(), "ABC123"); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Errorf("Expected session gone after delete, got %v", err)
	}

	var nfErr *NotFoundError
	if err := tutor.DeleteSession(context.Background(), "ABC123"); !errors.As(err, &nfErr) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}
}
