package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
	"github.com/winnyineza/choir-tickets/pkg/pagination"
)

// OrdersAdminHandler is the console's view of orders: listing, payment
// confirmation, cancellation and the monthly CSV export.
type OrdersAdminHandler struct {
	Validate   *validator.Validate
	OrderLogic logic.OrderLogic
}

type confirmOrderBody struct {
	PaymentRef string `json:"payment_ref" validate:"required,max=120"`
}

type cancelOrderBody struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

func InitOrdersAdminHandler(router *mux.Router, validate *validator.Validate, orderLogic logic.OrderLogic, authMiddleware http_middleware.AuthMiddleware, exportLimiter func(http.Handler) http.Handler) {
	handler := &OrdersAdminHandler{Validate: validate, OrderLogic: orderLogic}

	router.Handle("/api/v1/console/events/{event_id}/orders", authMiddleware(http.HandlerFunc(handler.ListOrders))).Methods(http.MethodGet)
	router.Handle("/api/v1/console/events/{event_id}/orders/export", authMiddleware(exportLimiter(http.HandlerFunc(handler.ExportOrders)))).Methods(http.MethodGet)
	router.Handle("/api/v1/console/orders/{order_id}", authMiddleware(http.HandlerFunc(handler.GetOrder))).Methods(http.MethodGet)
	router.Handle("/api/v1/console/orders/{order_id}/confirm", authMiddleware(http.HandlerFunc(handler.ConfirmOrder))).Methods(http.MethodPost)
	router.Handle("/api/v1/console/orders/{order_id}/cancel", authMiddleware(http.HandlerFunc(handler.CancelOrder))).Methods(http.MethodPost)
}

func (h *OrdersAdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	qs := r.URL.Query()

	eventID, err := primitive.ObjectIDFromHex(mux.Vars(r)["event_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	status := constants.ParseOrderStatus(qs.Get("status"))
	page, _ := strconv.Atoi(qs.Get("page"))
	pageSize, _ := strconv.Atoi(qs.Get("page_size"))
	pageReq := pagination.NewPageRequest(page, pageSize)

	result, err := h.OrderLogic.GetOrdersByEvent(ctx, eventID, status, pageReq)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "list of orders", result)
}

func (h *OrdersAdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["order_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.OrderLogic.GetOrder(ctx, orderID)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "order details", order)
}

func (h *OrdersAdminHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operator, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["order_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	body := confirmOrderBody{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateStruct(ctx, h.Validate, body); err != nil {
		WriteHttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.OrderLogic.ConfirmOrder(ctx, &dto.ConfirmOrderRequest{
		OrderID:    orderID,
		PaymentRef: body.PaymentRef,
		Operator:   operator,
	})
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "order confirmed", resp)
}

func (h *OrdersAdminHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operator, _, ok := operatorRef(w, ctx)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["order_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	body := cancelOrderBody{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteHttpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	err = h.OrderLogic.CancelOrder(ctx, &dto.CancelOrderRequest{
		OrderID:  orderID,
		Reason:   body.Reason,
		Operator: operator,
	})
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "order cancelled", nil)
}

func (h *OrdersAdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	qs := r.URL.Query()

	eventID, err := primitive.ObjectIDFromHex(mux.Vars(r)["event_id"])
	if err != nil {
		WriteHttpError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	year, err := strconv.Atoi(qs.Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		WriteHttpError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(qs.Get("month"))
	if err != nil || month < 1 || month > 12 {
		WriteHttpError(w, http.StatusBadRequest, "invalid month")
		return
	}

	filename, data, err := h.OrderLogic.ExportEventOrdersByMonth(ctx, eventID, year, month)
	if err != nil {
		writeLogicError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
