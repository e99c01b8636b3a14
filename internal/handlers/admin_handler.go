package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"tonequest/internal/importer"
	"tonequest/internal/models"
	"tonequest/internal/service"
)

// AdminHandler serves deck management, bulk word import and user
// administration. Routes using it sit behind the admin role guard,
// except the word-import endpoint which teachers may also use.
type AdminHandler struct {
	decks         *service.DeckService
	auth          *service.AuthService
	importer      *importer.Importer
	maxUploadSize int64
	logger        *zap.Logger
}

func NewAdminHandler(decks *service.DeckService, auth *service.AuthService, imp *importer.Importer, maxUploadSize int64, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		decks:         decks,
		auth:          auth,
		importer:      imp,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// CreateDeck handles POST /api/admin/decks
func (h *AdminHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deck, err := h.decks.CreateDeck(req.Name, req.Description)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newDeckView(*deck))
}

// DeleteDeck handles DELETE /api/admin/decks/{id}
func (h *AdminHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.decks.DeleteDeck(r.PathValue("id")); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddWord handles POST /api/admin/decks/{id}/words
func (h *AdminHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Jyutping string `json:"jyutping"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	word, err := h.decks.AddWord(r.PathValue("id"), req.Text, req.Jyutping)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newWordView(*word))
}

// DeleteWord handles DELETE /api/admin/words/{id}
func (h *AdminHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	if err := h.decks.DeleteWord(r.PathValue("id")); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportWords handles POST /api/admin/decks/{id}/import. The body is
// multipart form data with a "file" part holding an xlsx or csv word
// list.
func (h *AdminHandler) ImportWords(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	deckID := r.PathValue("id")
	result, err := h.importer.Import(header.Filename, data, func(text, jyutping string) error {
		_, err := h.decks.AddWord(deckID, text, jyutping)
		return err
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("word import finished",
		zap.String("deck_id", deckID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))

	respondJSON(w, http.StatusOK, importResultView{
		TotalRows: result.TotalRows,
		Imported:  result.Imported,
		Skipped:   result.Skipped,
		Errors:    result.Errors,
	})
}

// CreateUser handles POST /api/admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Email    string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.CreateUser(req.Username, req.Password, models.Role(req.Role), req.Email)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newUserView(user))
}

// ResetUserPassword handles POST /api/admin/users/{id}/reset-password
func (h *AdminHandler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.SetPassword(r.PathValue("id"), req.NewPassword); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// AssociateStudent handles POST /api/admin/associations
func (h *AdminHandler) AssociateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
		TeacherID string `json:"teacherId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.AssociateStudent(req.StudentID, req.TeacherID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
