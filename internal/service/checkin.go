package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
)

// CheckinHandler serves the door scanner. A rejected scan still returns the
// order snapshot so the screen can show why admission was refused.
type CheckinHandler struct {
	Validate     *validator.Validate
	CheckinLogic *logic.CheckinLogic
}

func InitCheckinHandler(router *mux.Router, validate *validator.Validate, checkinLogic *logic.CheckinLogic, authMiddleware http_middleware.AuthMiddleware) {
	handler := &CheckinHandler{Validate: validate, CheckinLogic: checkinLogic}

	router.Handle("/api/v1/console/checkin", authMiddleware(http.HandlerFunc(handler.Admit))).Methods(http.MethodPost)
}

func (h *CheckinHandler) Admit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.CheckinRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.CheckinLogic.Admit(ctx, &req)
	if err != nil {
		// An already-used ticket comes back with the original admission's
		// details attached; surface both the refusal and the snapshot.
		if errors.Is(err, logic.ErrTicketAlreadyUsed) && result != nil {
			writeJSON(w, http.StatusConflict, Envelope{
				Status:  "error",
				Message: err.Error(),
				Data:    result,
			})
			return
		}
		writeLogicError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "admission granted", result)
}
