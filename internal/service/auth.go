package service

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
)

// AuthHandler serves operator login and session introspection.
type AuthHandler struct {
	Validate  *validator.Validate
	AuthLogic *logic.AuthLogic
}

func InitAuthHandler(router *mux.Router, validate *validator.Validate, authLogic *logic.AuthLogic, authMiddleware http_middleware.AuthMiddleware, loginLimiter func(http.Handler) http.Handler) {
	handler := &AuthHandler{Validate: validate, AuthLogic: authLogic}

	router.Handle("/api/v1/auth/login", loginLimiter(http.HandlerFunc(handler.Login))).Methods(http.MethodPost)
	router.Handle("/api/v1/console/session", authMiddleware(http.HandlerFunc(handler.GetSession))).Methods(http.MethodGet)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.AuthLogic.Login(ctx, &req)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "login successful", resp)
}

func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := http_middleware.SessionFromContext(r.Context())
	if !ok {
		WriteHttpError(w, http.StatusUnauthorized, "missing session")
		return
	}

	writeSuccess(w, http.StatusOK, "current session", map[string]interface{}{
		"operator":   session.Operator,
		"role":       session.Role,
		"remember":   session.Remember,
		"expires_at": session.ExpiresAt,
	})
}
