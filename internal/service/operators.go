package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
	"github.com/winnyineza/choir-tickets/pkg/pagination"
)

// OperatorsHandler is the super_admin console for account management and the
// audit trail.
type OperatorsHandler struct {
	Validate      *validator.Validate
	OperatorLogic *logic.OperatorLogic
}

func InitOperatorsHandler(router *mux.Router, validate *validator.Validate, operatorLogic *logic.OperatorLogic, authMiddleware http_middleware.AuthMiddleware) {
	handler := &OperatorsHandler{Validate: validate, OperatorLogic: operatorLogic}

	superAdmin := http_middleware.RequireRole(constants.RoleSuperAdmin)

	router.Handle("/api/v1/console/operators", authMiddleware(superAdmin(http.HandlerFunc(handler.ListOperators)))).Methods(http.MethodGet)
	router.Handle("/api/v1/console/operators/{operator_id}", authMiddleware(superAdmin(http.HandlerFunc(handler.GetOperator)))).Methods(http.MethodGet)
	router.Handle("/api/v1/console/operators/{operator_id}/role", authMiddleware(superAdmin(http.HandlerFunc(handler.UpdateRole)))).Methods(http.MethodPut)
	router.Handle("/api/v1/console/operators/{operator_id}/active", authMiddleware(superAdmin(http.HandlerFunc(handler.SetActive)))).Methods(http.MethodPut)
	router.Handle("/api/v1/console/operators/{operator_id}", authMiddleware(superAdmin(http.HandlerFunc(handler.Delete)))).Methods(http.MethodDelete)
	router.Handle("/api/v1/console/audit-log", authMiddleware(superAdmin(http.HandlerFunc(handler.ListAuditLog)))).Methods(http.MethodGet)
}

func (h *OperatorsHandler) ListOperators(w http.ResponseWriter, r *http.Request) {
	operators, err := h.OperatorLogic.ListOperators(r.Context())
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "list of operators", operators)
}

func (h *OperatorsHandler) GetOperator(w http.ResponseWriter, r *http.Request) {
	operatorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["operator_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid operator id")
		return
	}

	operator, err := h.OperatorLogic.GetOperator(r.Context(), operatorID)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "operator details", operator)
}

func (h *OperatorsHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, actorRole, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.UpdateOperatorRoleRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OperatorID = mux.Vars(r)["operator_id"]
	req.Actor = actor
	req.ActorRole = actorRole

	if err := h.OperatorLogic.UpdateOperatorRole(ctx, &req); err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "operator role updated", nil)
}

func (h *OperatorsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, actorRole, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.SetOperatorActiveRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req.OperatorID = mux.Vars(r)["operator_id"]
	req.Actor = actor
	req.ActorRole = actorRole

	if err := h.OperatorLogic.SetOperatorActive(ctx, &req); err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "operator updated", nil)
}

func (h *OperatorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, actorRole, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.DeleteOperatorRequest{
		OperatorID: mux.Vars(r)["operator_id"],
		Actor:      actor,
		ActorRole:  actorRole,
	}

	if err := h.OperatorLogic.DeleteOperator(ctx, &req); err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "operator deleted", nil)
}

func (h *OperatorsHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	qs := r.URL.Query()

	params := &repository.ListAuditLogParams{
		Action: qs.Get("action"),
	}

	if raw := qs.Get("operator_id"); raw != "" {
		operatorID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			WriteHttpError(w, http.StatusBadRequest, "invalid operator id")
			return
		}
		params.OperatorID = operatorID
	}
	if raw := qs.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteHttpError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		params.From = from
	}
	if raw := qs.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteHttpError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		params.To = to
	}

	page, _ := strconv.Atoi(qs.Get("page"))
	pageSize, _ := strconv.Atoi(qs.Get("page_size"))
	pageReq := pagination.NewPageRequest(page, pageSize)
	params.Limit = pageReq.GetLimit()
	params.Offset = pageReq.GetOffset()

	entries, total, err := h.OperatorLogic.ListAuditLog(ctx, params)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "audit log", pagination.NewPageResult(entries, total, pageReq))
}
