package service

import (
	"context"
	"net/http"

	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// operatorRef extracts the acting operator from the session middleware, or
// writes a 401 and reports false.
func operatorRef(w http.ResponseWriter, ctx context.Context) (*models.OperatorRef, string, bool) {
	session, ok := http_middleware.SessionFromContext(ctx)
	if !ok {
		WriteHttpError(w, http.StatusUnauthorized, "missing session")
		return nil, "", false
	}
	ref := session.Operator
	return &ref, session.Role, true
}
