package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tonequest/internal/service"
)

// DeckHandler serves the read-only deck endpoints available to every
// authenticated user. Mutations live on the admin handler.
type DeckHandler struct {
	decks  *service.DeckService
	logger *zap.Logger
}

func NewDeckHandler(decks *service.DeckService, logger *zap.Logger) *DeckHandler {
	return &DeckHandler{decks: decks, logger: logger}
}

// ListDecks handles GET /api/decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.decks.ListDecks()
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	views := make([]deckView, len(decks))
	for i, d := range decks {
		views[i] = newDeckView(d)
	}
	respondJSON(w, http.StatusOK, views)
}

// GetDeck handles GET /api/decks/{id}
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := h.decks.GetDeckWithWords(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newDeckWithWordsView(deck))
}
