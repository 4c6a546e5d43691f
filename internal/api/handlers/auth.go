// internal/api/handlers/auth.go
package handlers

import (
	"net/http"
	"time"

	"github.com/asauntung/bumdes/internal/api/httpx"
	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/auth"
	"github.com/asauntung/bumdes/internal/models"
)

// Authenticator is the identity collaborator.
type Authenticator interface {
	Authenticate(username, password string) (models.Principal, error)
}

type AuthHandler struct {
	TM    *auth.TokenManager
	Users Authenticator
}

func NewAuthHandler(tm *auth.TokenManager, users Authenticator) *AuthHandler {
	return &AuthHandler{TM: tm, Users: users}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"` // seconds
	User         models.Principal `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	p, err := h.Users.Authenticate(req.Username, req.Password)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	h.issue(w, p)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := decode(r, &req); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteAppError(w, apperr.New(apperr.CodeAuthentication, "invalid refresh token"))
		return
	}
	h.issue(w, claims.Principal())
}

func (h *AuthHandler) issue(w http.ResponseWriter, p models.Principal) {
	access, refresh, exp, err := h.TM.GeneratePair(p)
	if err != nil {
		httpx.WriteAppError(w, apperr.Wrap(apperr.CodeInternal, err, "token generation failed"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Truncate(time.Second).Seconds()),
		User:         p,
	})
}
