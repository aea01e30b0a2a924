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

// StaffHandler manages the door staff roster from the console.
type StaffHandler struct {
	Validate   *validator.Validate
	StaffLogic *logic.StaffLogic
}

func InitStaffHandler(router *mux.Router, validate *validator.Validate, staffLogic *logic.StaffLogic, authMiddleware http_middleware.AuthMiddleware) {
	handler := &StaffHandler{Validate: validate, StaffLogic: staffLogic}

	router.Handle("/api/v1/console/staff", authMiddleware(http.HandlerFunc(handler.AddStaff))).Methods(http.MethodPost)
	router.Handle("/api/v1/console/staff", authMiddleware(http.HandlerFunc(handler.ListStaff))).Methods(http.MethodGet)
	router.Handle("/api/v1/console/staff/{staff_id}/events", authMiddleware(http.HandlerFunc(handler.AssignStaff))).Methods(http.MethodPut)
	router.Handle("/api/v1/console/staff/{staff_id}/active", authMiddleware(http.HandlerFunc(handler.SetActive))).Methods(http.MethodPut)
}

func (h *StaffHandler) AddStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operator, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.AddStaffRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Operator = operator

	id, err := h.StaffLogic.AddStaff(ctx, &req)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "staff member added", map[string]string{"id": id.Hex()})
}

func (h *StaffHandler) AssignStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operator, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.AssignStaffRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.StaffID = mux.Vars(r)["staff_id"]
	req.Operator = operator

	if err := h.StaffLogic.AssignStaff(ctx, &req); err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "staff assignments updated", nil)
}

func (h *StaffHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operator, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	req := dto.SetStaffActiveRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req.StaffID = mux.Vars(r)["staff_id"]
	req.Operator = operator

	if err := h.StaffLogic.SetStaffActive(ctx, &req); err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "staff member updated", nil)
}

func (h *StaffHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.StaffLogic.ListStaff(r.Context())
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "list of staff", staff)
}
