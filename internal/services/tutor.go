package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gr1shq/showdesk/internal/models"
	"github.com/gr1shq/showdesk/internal/repository"
)

const (
	// Transcript excerpt embedded in every chat prompt.
	chatTranscriptLimit = 3000
	// Trailing messages included as conversation context (3 exchanges).
	chatHistoryWindow = 6
	// Transcript preview returned from Analyze.
	previewLimit = 200
	// Screenshot payloads at or below this length are treated as
	// empty/placeholder data and ignored.
	minScreenshotLen = 100
)

// AudioTranscriber turns downloaded audio into text. Used only when a
// video has no caption track.
type AudioTranscriber interface {
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// TutorService is the conversation orchestrator: it creates learning
// sessions from video URLs and drives the contextual chat about them.
type TutorService struct {
	gen         Generator
	transcriber AudioTranscriber
	youtube     TranscriptSource
	subjects    *SubjectClassifier
	suggestions *SuggestionService
	store       repository.SessionStore
	locks       *repository.SessionLocks
	log         *logrus.Logger
}

func NewTutorService(
	gen Generator,
	transcriber AudioTranscriber,
	youtube TranscriptSource,
	subjects *SubjectClassifier,
	suggestions *SuggestionService,
	store repository.SessionStore,
	log *logrus.Logger,
) *TutorService {
	return &TutorService{
		gen:         gen,
		transcriber: transcriber,
		youtube:     youtube,
		subjects:    subjects,
		suggestions: suggestions,
		store:       store,
		locks:       repository.NewSessionLocks(),
		log:         log,
	}
}

// Analyze fetches the transcript for a video URL, detects its subject,
// generates the initial suggestions and creates the session. The session
// is fully populated before it is stored, so a concurrent lookup sees
// either nothing or the complete record.
func (s *TutorService) Analyze(ctx context.Context, url string) (*models.AnalyzeContentResponse, error) {
	videoID, err := s.youtube.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	s.log.WithField("video_id", videoID).Info("analyzing video")

	transcript, segments, err := s.fetchTranscript(ctx, videoID, url)
	if err != nil {
		return nil, &InvalidInputError{Message: err.Error()}
	}

	subject := s.subjects.Detect(ctx, transcript)
	suggestions := s.suggestions.GenerateInitial(ctx, transcript, subject)

	now := time.Now().UTC()
	session := &models.Session{
		ID:                 videoID,
		SourceURL:          url,
		Transcript:         transcript,
		Segments:           segments,
		Subject:            subject,
		ChatHistory:        []models.ChatMessage{},
		SuggestedQuestions: suggestions,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": videoID,
		"subject":    subject.Subject,
		"topic":      subject.Topic,
	}).Info("session created")

	return &models.AnalyzeContentResponse{
		Success:            true,
		SessionID:          videoID,
		Subject:            subject,
		SuggestedQuestions: suggestions,
		Message:            fmt.Sprintf("Ready to chat about %s!", subject.Topic),
		TranscriptPreview:  truncate(transcript, previewLimit) + "...",
	}, nil
}

// fetchTranscript tries captions first, then falls back to downloading the
// audio stream and transcribing it.
func (s *TutorService) fetchTranscript(ctx context.Context, videoID, url string) (string, []models.TranscriptSegment, error) {
	transcript, segments, err := s.youtube.FetchTranscript(videoID)
	if err == nil {
		return transcript, segments, nil
	}

	s.log.WithError(err).WithField("video_id", videoID).Warn("caption fetch failed, trying audio transcription")

	audio, mimeType, dlErr := s.youtube.DownloadAudio(url)
	if dlErr != nil {
		return "", nil, fmt.Errorf("transcript unavailable: %v (audio fallback: %v)", err, dlErr)
	}

	transcript, trErr := s.transcriber.TranscribeAudio(ctx, audio, mimeType)
	if trErr != nil {
		return "", nil, fmt.Errorf("transcript unavailable: %v (audio transcription: %v)", err, trErr)
	}

	return transcript, []models.TranscriptSegment{{Text: transcript}}, nil
}

// Chat runs one conversation turn. The session lock is held for the whole
// turn, so concurrent turns on one session serialize. Provider failures do
// not fail the turn: the error text becomes the assistant's visible reply
// and history still grows by exactly two messages, user first.
func (s *TutorService) Chat(ctx context.Context, sessionID, message, screenshot string) (*models.ChatResponse, error) {
	lock := s.locks.Lock(sessionID)
	defer lock.Unlock()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	prompt := buildTutorPrompt(session, message)

	var reply string
	if len(screenshot) > minScreenshotLen {
		reply, err = s.gen.GenerateWithImage(ctx, prompt, screenshot)
	} else {
		reply, err = s.gen.GenerateText(ctx, prompt)
	}
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("generation failed, returning inline error reply")
		reply = fmt.Sprintf("Error: %v", err)
	}

	session.ChatHistory = append(session.ChatHistory,
		models.ChatMessage{Role: "user", Content: message},
		models.ChatMessage{Role: "assistant", Content: reply},
	)
	session.UpdatedAt = time.Now().UTC()

	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Success:      true,
		Response:     reply,
		ChatHistory:  session.ChatHistory,
		MessageCount: len(session.ChatHistory),
	}, nil
}

// RegenerateSuggestions replaces the session's suggested questions based
// on the conversation so far.
func (s *TutorService) RegenerateSuggestions(ctx context.Context, sessionID string) ([]string, error) {
	lock := s.locks.Lock(sessionID)
	defer lock.Unlock()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	suggestions := s.suggestions.GenerateContextual(ctx, session.Transcript, session.Subject, session.ChatHistory)

	session.SuggestedQuestions = suggestions
	session.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}

	return suggestions, nil
}

func (s *TutorService) GetSession(ctx context.Context, sessionID string) (*models.SessionResponse, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	return &models.SessionResponse{
		SessionID:          session.ID,
		Subject:            session.Subject,
		MessageCount:       len(session.ChatHistory),
		SuggestedQuestions: session.SuggestedQuestions,
		URL:                session.SourceURL,
	}, nil
}

func (s *TutorService) GetHistory(ctx context.Context, sessionID string) (*models.HistoryResponse, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	return &models.HistoryResponse{
		SessionID:   session.ID,
		ChatHistory: session.ChatHistory,
		Subject:     session.Subject,
	}, nil
}

func (s *TutorService) DeleteSession(ctx context.Context, sessionID string) error {
	lock := s.locks.Lock(sessionID)
	defer lock.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return s.wrapStoreErr(err)
	}
	s.locks.Forget(sessionID)
	return nil
}

func (s *TutorService) wrapStoreErr(err error) error {
	if errors.Is(err, repository.ErrSessionNotFound) {
		return &NotFoundError{Message: "Session not found"}
	}
	return err
}

// buildTutorPrompt assembles the layered chat prompt: persona, learning
// context, transcript excerpt, trailing conversation, current message and
// the instruction footer.
func buildTutorPrompt(session *models.Session, message string) string {
	var chatContext strings.Builder
	if len(session.ChatHistory) > 0 {
		chatContext.WriteString("PREVIOUS CONVERSATION:\n")
		start := len(session.ChatHistory) - chatHistoryWindow
		if start < 0 {
			start = 0
		}
		for _, msg := range session.ChatHistory[start:] {
			role := "Assistant"
			if msg.Role == "user" {
				role = "User"
			}
			chatContext.WriteString(fmt.Sprintf("%s: %s\n", role, msg.Content))
		}
		chatContext.WriteString("\n")
	}

	return fmt.Sprintf(`You are SHOWDESK, a helpful AI learning assistant having a conversation with a student.

LEARNING CONTEXT:
- Subject: %s
- Topic: %s
- Level: %s
- Key Concepts: %s

TUTORIAL/VIDEO CONTENT (for reference):
%s...

%s
CURRENT USER MESSAGE: %s

INSTRUCTIONS:
- Answer naturally and conversationally
- Reference the tutorial content when relevant
- Be encouraging and helpful
- If they're confused, break it down simply
- If they're doing well, acknowledge it
- Adapt your explanation style to the subject (%s)
- Keep responses focused and not too long (2-4 paragraphs max)

Your response:`,
		session.Subject.Subject,
		session.Subject.Topic,
		session.Subject.Level,
		strings.Join(session.Subject.Concepts, ", "),
		truncate(session.Transcript, chatTranscriptLimit),
		chatContext.String(),
		message,
		session.Subject.Subject,
	)
}
