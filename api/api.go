package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/rahmadiyan/health-store/api/background"
	"github.com/rahmadiyan/health-store/api/middleware"
	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/core/auth"
	"github.com/rahmadiyan/health-store/core/notification"
	"github.com/rahmadiyan/health-store/core/order"
	"github.com/rahmadiyan/health-store/core/payment"
	"github.com/rahmadiyan/health-store/core/product"
	"github.com/rahmadiyan/health-store/core/user"
	"github.com/rahmadiyan/health-store/core/vendor"
	"github.com/rahmadiyan/health-store/core/wishlist"
	"github.com/rahmadiyan/health-store/rate"
	"github.com/sirupsen/logrus"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	Mailer           Mailer
	Background       *background.Background
	Limiter          *rate.Limiter
	Providers        map[string]auth.Provider
	LoginRedirectURL string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.Limiter != nil {
		a.mw = append(a.mw, middleware.RateLimit(cfg.Limiter))
	}

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/signup-vendor", auth.HandleSignupVendor(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodGet, "/users", user.HandleList(cfg.DB), admin)
	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/me", user.HandleUpdateCurrent(cfg.DB), authen)

	a.Handle(http.MethodPost, "/vendors/apply", vendor.HandleApply(cfg.DB), authen)
	a.Handle(http.MethodGet, "/vendors/current", vendor.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/vendors", vendor.HandleList(cfg.DB), admin)
	a.Handle(http.MethodPut, "/vendors/{id}/approve", vendor.HandleApprove(cfg.DB, cfg.Mailer, cfg.Background), admin)
	a.Handle(http.MethodGet, "/vendors/{id}", vendor.HandleShow(cfg.DB))

	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodPut, "/products/{id}", product.HandleUpdate(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/products/{id}", product.HandleDelete(cfg.DB), authen)

	a.Handle(http.MethodPost, "/orders", order.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/vendor/{vendor_id}", order.HandleListByVendor(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/user/{user_id}", order.HandleListByUser(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPut, "/orders/{id}/status", order.HandleUpdateStatus(cfg.DB, cfg.Mailer, cfg.Background), authen)

	// The shipment surface is the same transition operation.
	a.Handle(http.MethodPut, "/shipments/{id}", order.HandleUpdateStatus(cfg.DB, cfg.Mailer, cfg.Background), authen)

	a.Handle(http.MethodPost, "/payments/mock", payment.HandleMockPay(cfg.DB), authen)
	a.Handle(http.MethodPut, "/payments/{id}/status", payment.HandleUpdateStatus(cfg.DB), admin)

	a.Handle(http.MethodGet, "/notifications", notification.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPut, "/notifications/{id}/read", notification.HandleMarkRead(cfg.DB), authen)

	a.Handle(http.MethodGet, "/wishlist", wishlist.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/wishlist", wishlist.HandleCreateItem(cfg.DB), authen)
	a.Handle(http.MethodGet, "/wishlist/check/{product_id}", wishlist.HandleCheckItem(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/wishlist/{product_id}", wishlist.HandleDeleteItem(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/wishlist", wishlist.HandleDelete(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
