package handler

import (
	"net/http"

	"github.com/lucerne-re/policy-api/internal/auth"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

// @Summary Current user
// @Description Returns the identity and roles of the authenticated caller
// @Tags Auth
// @Produce json
// @Success 200 {object} MeResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "No authenticated user")
		return
	}

	respondJSON(w, http.StatusOK, MeResponse{
		UserID:      userCtx.UserID.String(),
		DisplayName: userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       userCtx.Roles,
	})
}
