package service

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	"github.com/winnyineza/choir-tickets/pkg/pagination"
)

// OrdersHandler is the public checkout surface. Every route here is
// unauthenticated and rate limited.
type OrdersHandler struct {
	Validate   *validator.Validate
	OrderLogic logic.OrderLogic
}

func InitOrdersHandler(router *mux.Router, validate *validator.Validate, orderLogic logic.OrderLogic, checkoutLimiter func(http.Handler) http.Handler) {
	handler := &OrdersHandler{Validate: validate, OrderLogic: orderLogic}

	router.Handle("/api/v1/orders", checkoutLimiter(http.HandlerFunc(handler.CreateOrder))).Methods(http.MethodPost)
	router.Handle("/api/v1/orders", checkoutLimiter(http.HandlerFunc(handler.GetOrdersByBuyer))).Methods(http.MethodGet)
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.CreateOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, req); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.OrderLogic.CreateOrder(ctx, &req)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "order has been placed", resp)
}

func (h *OrdersHandler) GetOrdersByBuyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	qs := r.URL.Query()

	email := qs.Get("email")
	if email == "" {
		WriteHttpError(w, http.StatusBadRequest, "missing email")
		return
	}

	token := pagination.PageToken(qs.Get("page_token"))
	orders, next, err := h.OrderLogic.GetOrdersByBuyer(ctx, email, token)
	if err != nil {
		writeLogicError(w, err)
		return
	}

	// Admission tokens travel by email only; knowing a buyer's address must
	// not be enough to pull one.
	for _, o := range orders {
		o.CheckinToken = ""
	}

	writeJSON(w, http.StatusOK, Envelope{
		Status:  "success",
		Message: "list of orders",
		Data:    orders,
		Meta:    map[string]string{"next_page_token": string(next)},
	})
}
