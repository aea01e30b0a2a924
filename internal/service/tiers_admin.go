package service

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
)

// TiersAdminHandler manages ticket tiers from the admin console.
type TiersAdminHandler struct {
	Validate  *validator.Validate
	TierLogic *logic.TierLogic
}

func InitTiersAdminHandler(router *mux.Router, validate *validator.Validate, tierLogic *logic.TierLogic, authMiddleware http_middleware.AuthMiddleware) {
	handler := &TiersAdminHandler{Validate: validate, TierLogic: tierLogic}

	router.Handle("/api/v1/console/tiers", authMiddleware(http.HandlerFunc(handler.AddTier))).Methods(http.MethodPost)
	router.Handle("/api/v1/console/tiers/{tier_id}", authMiddleware(http.HandlerFunc(handler.UpdateTier))).Methods(http.MethodPut)
	router.Handle("/api/v1/console/events/{event_id}/tiers", authMiddleware(http.HandlerFunc(handler.ListTiers))).Methods(http.MethodGet)
}

func (h *TiersAdminHandler) AddTier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operator, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.AddTierRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Operator = operator

	id, err := h.TierLogic.AddTier(ctx, &req)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "tier created", map[string]string{"id": id.Hex()})
}

func (h *TiersAdminHandler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operator, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.UpdateTierRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.TierID = mux.Vars(r)["tier_id"]
	req.Operator = operator

	if err := h.TierLogic.UpdateTier(ctx, &req); err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "tier updated", nil)
}

func (h *TiersAdminHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := primitive.ObjectIDFromHex(mux.Vars(r)["event_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	tiers, err := h.TierLogic.ListTiers(ctx, eventID)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "list of tiers", tiers)
}
