package service

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/logic"
)

// TiersHandler is the public tier listing used by the checkout page.
type TiersHandler struct {
	TierLogic *logic.TierLogic
}

func InitTiersHandler(router *mux.Router, tierLogic *logic.TierLogic) {
	handler := &TiersHandler{TierLogic: tierLogic}

	router.HandleFunc("/api/v1/events/{event_id}/tiers", handler.GetAvailability).Methods(http.MethodGet)
}

func (h *TiersHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := primitive.ObjectIDFromHex(mux.Vars(r)["event_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	tiers, err := h.TierLogic.GetTierAvailability(ctx, eventID)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "tier availability", tiers)
}
