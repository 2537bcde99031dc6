package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gr1shq/showdesk/internal/models"
)

// tutorService is the slice of TutorService the handlers need.
type tutorService interface {
	Analyze(ctx context.Context, url string) (*models.AnalyzeContentResponse, error)
	Chat(ctx context.Context, sessionID, message, screenshot string) (*models.ChatResponse, error)
	RegenerateSuggestions(ctx context.Context, sessionID string) ([]string, error)
	GetSession(ctx context.Context, sessionID string) (*models.SessionResponse, error)
	GetHistory(ctx context.Context, sessionID string) (*models.HistoryResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type AnalyzeHandler struct {
	tutor tutorService
}

func NewAnalyzeHandler(tutor tutorService) *AnalyzeHandler {
	return &AnalyzeHandler{tutor: tutor}
}

// AnalyzeContent creates a learning session from a video URL.
func (h *AnalyzeHandler) AnalyzeContent(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "URL is required", r))
		return
	}

	resp, err := h.tutor.Analyze(r.Context(), req.URL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
