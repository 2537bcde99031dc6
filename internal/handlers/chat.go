package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gr1shq/showdesk/internal/models"
)

type ChatHandler struct {
	tutor tutorService
}

func NewChatHandler(tutor tutorService) *ChatHandler {
	return &ChatHandler{tutor: tutor}
}

// Chat runs one conversation turn against an existing session.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "session_id is required", r))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	resp, err := h.tutor.Chat(r.Context(), req.SessionID, req.Message, req.Screenshot)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GenerateSuggestions replaces the session's suggested questions based on
// the conversation so far.
func (h *ChatHandler) GenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "session_id is required", r))
		return
	}

	suggestions, err := h.tutor.RegenerateSuggestions(r.Context(), req.SessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateSuggestionsResponse{
		Success:     true,
		Suggestions: suggestions,
	})
}
