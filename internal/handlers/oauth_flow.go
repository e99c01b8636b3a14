package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tonequest/internal/config"
	"tonequest/internal/service"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthHandler runs the Google sign-in flow. Successful callbacks
// respond with the same token payload as password login.
type OAuthHandler struct {
	auth   *service.AuthService
	config *oauth2.Config
	logger *zap.Logger
}

func NewOAuthHandler(auth *service.AuthService, cfg *config.Config, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		auth: auth,
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

func (h *OAuthHandler) configured() bool {
	return h.config.ClientID != "" && h.config.ClientSecret != ""
}

// Start handles GET /api/auth/google/start
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		respondError(w, http.StatusBadRequest, "google sign-in is not configured")
		return
	}

	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := h.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /api/auth/google/callback
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		respondError(w, http.StatusBadRequest, "google sign-in is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", zap.Error(err))
		respondError(w, http.StatusBadRequest, "failed to exchange authorization code")
		return
	}

	info, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.logger.Warn("oauth userinfo fetch failed", zap.Error(err))
		respondError(w, http.StatusBadRequest, "failed to fetch user info")
		return
	}
	if info.Subject == "" {
		respondError(w, http.StatusBadRequest, "oauth profile has no subject")
		return
	}

	user, accessToken, err := h.auth.LoginOAuth("google:"+info.Subject, info.Email, info.Name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, tokenView{Token: accessToken, User: newUserView(user)})
}

type googleUserInfo struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"given_name"`
}

func (h *OAuthHandler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.config.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, body)
	}

	info := &googleUserInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, err
	}
	return info, nil
}
