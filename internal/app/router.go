package app

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/winnyineza/choir-tickets/internal/limiter"
	"github.com/winnyineza/choir-tickets/internal/logic"
	http_middleware "github.com/winnyineza/choir-tickets/internal/middleware/http"
	"github.com/winnyineza/choir-tickets/internal/service"
)

// NewRouter builds the HTTP routing table. Public checkout and login routes
// carry their own rate-limit policies; everything under /console goes through
// the session middleware inside each handler's Init function.
func NewRouter(
	validate *validator.Validate,
	authLogic *logic.AuthLogic,
	tierLogic *logic.TierLogic,
	orderLogic logic.OrderLogic,
	checkinLogic *logic.CheckinLogic,
	inviteLogic *logic.InviteLogic,
	operatorLogic *logic.OperatorLogic,
	staffLogic *logic.StaffLogic,
	authMiddleware http_middleware.AuthMiddleware,
	limiterManager *limiter.Manager,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	checkoutLimiter := http_middleware.CreateRateLimitMiddleware(limiterManager, "checkout")
	loginLimiter := http_middleware.CreateRateLimitMiddleware(limiterManager, "login")
	exportLimiter := http_middleware.CreateRateLimitMiddleware(limiterManager, "export_orders")

	service.InitAuthHandler(router, validate, authLogic, authMiddleware, loginLimiter)
	service.InitTiersHandler(router, tierLogic)
	service.InitTiersAdminHandler(router, validate, tierLogic, authMiddleware)
	service.InitOrdersHandler(router, validate, orderLogic, checkoutLimiter)
	service.InitOrdersAdminHandler(router, validate, orderLogic, authMiddleware, exportLimiter)
	service.InitCheckinHandler(router, validate, checkinLogic, authMiddleware)
	service.InitInvitesHandler(router, validate, inviteLogic, authMiddleware)
	service.InitOperatorsHandler(router, validate, operatorLogic, authMiddleware)
	service.InitStaffHandler(router, validate, staffLogic, authMiddleware)

	return router
}
