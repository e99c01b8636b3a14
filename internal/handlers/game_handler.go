package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tonequest/internal/judge"
	"tonequest/internal/service"
)

// GameHandler serves the game session lifecycle
type GameHandler struct {
	games        *service.GameService
	maxAudioSize int64
	logger       *zap.Logger
}

func NewGameHandler(games *service.GameService, maxAudioSize int64, logger *zap.Logger) *GameHandler {
	return &GameHandler{games: games, maxAudioSize: maxAudioSize, logger: logger}
}

// StartGame handles POST /api/games
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeckID string `json:"deckId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := UserFromContext(r.Context())
	view, err := h.games.StartGame(user.ID, req.DeckID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, newSessionView(view))
}

// GetGame handles GET /api/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	view, err := h.games.GetSession(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(view))
}

// SubmitAttempt handles POST /api/games/{id}/attempts. The body is
// multipart form data: an optional "audio" file part, an optional
// "recognized" text field with an on-device transcription, the target
// "wordId" and the "responseTimeMs" the player took.
func (h *GameHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxAudioSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	wordID := r.FormValue("wordId")
	if wordID == "" {
		respondError(w, http.StatusBadRequest, "wordId is required")
		return
	}

	responseTimeMs := 0
	if v := r.FormValue("responseTimeMs"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "responseTimeMs must be a non-negative integer")
			return
		}
		responseTimeMs = parsed
	}

	in := judge.Input{Recognized: strings.TrimSpace(r.FormValue("recognized"))}

	if file, header, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		audio, err := io.ReadAll(io.LimitReader(file, h.maxAudioSize))
		if err != nil {
			respondError(w, http.StatusBadRequest, "could not read audio upload")
			return
		}
		in.Audio = audio
		in.AudioMIME = header.Header.Get("Content-Type")
	}

	if len(in.Audio) == 0 && in.Recognized == "" {
		respondError(w, http.StatusBadRequest, "either audio or recognized text is required")
		return
	}

	user := UserFromContext(r.Context())
	result, err := h.games.SubmitPronunciation(r.Context(), user.ID, r.PathValue("id"), wordID, in, responseTimeMs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, newAttemptResultView(result))
}

// EndGame handles POST /api/games/{id}/end
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	view, err := h.games.EndGame(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(view))
}
