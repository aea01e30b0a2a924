package service

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
)

// InvitesHandler issues, revokes and accepts operator invites. Issue and
// revoke are super_admin routes; accept is public because the invitee has no
// account yet.
type InvitesHandler struct {
	Validate    *validator.Validate
	InviteLogic *logic.InviteLogic
}

func InitInvitesHandler(router *mux.Router, validate *validator.Validate, inviteLogic *logic.InviteLogic, authMiddleware http_middleware.AuthMiddleware) {
	handler := &InvitesHandler{Validate: validate, InviteLogic: inviteLogic}

	superAdmin := http_middleware.RequireRole(constants.RoleSuperAdmin)

	router.Handle("/api/v1/console/invites", authMiddleware(superAdmin(http.HandlerFunc(handler.IssueInvite)))).Methods(http.MethodPost)
	router.Handle("/api/v1/console/invites", authMiddleware(superAdmin(http.HandlerFunc(handler.ListInvites)))).Methods(http.MethodGet)
	router.Handle("/api/v1/console/invites/{invite_id}", authMiddleware(superAdmin(http.HandlerFunc(handler.RevokeInvite)))).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/invites/accept", handler.AcceptInvite).Methods(http.MethodPost)
}

func (h *InvitesHandler) IssueInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	issuer, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.IssueInviteRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.InviteLogic.IssueInvite(ctx, issuer, &req)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "invite issued", resp)
}

func (h *InvitesHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.InviteLogic.ListInvites(r.Context())
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "list of invites", invites)
}

func (h *InvitesHandler) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	inviteID, err := primitive.ObjectIDFromHex(mux.Vars(r)["invite_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid invite id")
		return
	}

	if err := h.InviteLogic.RevokeInvite(ctx, actor, inviteID); err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "invite revoked", nil)
}

func (h *InvitesHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.AcceptInviteRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.InviteLogic.AcceptInvite(ctx, &req)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "account provisioned", resp)
}
