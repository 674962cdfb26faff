// Package httpd exposes the demo proxy's HTTP surface: one route per
// authentication flow action plus a reservations CRUD protected by token
// introspection.
package httpd

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cumulusid/adaptive/internal/demo/reservations"
	"github.com/cumulusid/adaptive/pkg/adaptive"
	"github.com/cumulusid/adaptive/pkg/httpx"
	"github.com/cumulusid/adaptive/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sdk          *adaptive.Adaptive
	store        reservations.Store
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// Tenant registration handles, wired from config before ApplyRoutes.
	IdentitySourceID string
	RelyingPartyID   string
	QRProfileID      string
}

func NewRouter(
	sdk *adaptive.Adaptive,
	store reservations.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		sdk:          sdk,
		store:        store,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerFlows()
	r.registerReservations()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerFlows() {
	// Each assessment costs a remote policy evaluation, so keep
	// unauthenticated callers on a tight budget.
	r.Mux.Handle("POST /assessments",
		httpx.Chain(http.HandlerFunc(r.handleAssess),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.HandleFunc("POST /generations/fido", r.handleGenerateFIDO)
	r.Mux.HandleFunc("POST /generations/qr", r.handleGenerateQR)
	r.Mux.HandleFunc("POST /generations/push", r.handleGeneratePush)
	r.Mux.HandleFunc("POST /generations/emailotp", r.handleGenerateEmailOTP)
	r.Mux.HandleFunc("POST /generations/smsotp", r.handleGenerateSMSOTP)
	r.Mux.HandleFunc("POST /generations/voiceotp", r.handleGenerateVoiceOTP)
	r.Mux.HandleFunc("POST /generations/questions", r.handleGenerateQuestions)

	r.Mux.HandleFunc("POST /evaluations/password", r.handleEvaluatePassword)
	r.Mux.HandleFunc("POST /evaluations/fido", r.handleEvaluateFIDO)
	r.Mux.HandleFunc("POST /evaluations/qr", r.handleEvaluateQR)
	r.Mux.HandleFunc("POST /evaluations/push", r.handleEvaluatePush)
	r.Mux.HandleFunc("POST /evaluations/totp", r.handleEvaluateTOTP)
	r.Mux.HandleFunc("POST /evaluations/emailotp", r.handleEvaluateEmailOTP)
	r.Mux.HandleFunc("POST /evaluations/smsotp", r.handleEvaluateSMSOTP)
	r.Mux.HandleFunc("POST /evaluations/voiceotp", r.handleEvaluateVoiceOTP)
	r.Mux.HandleFunc("POST /evaluations/questions", r.handleEvaluateQuestions)

	r.Mux.HandleFunc("POST /logout", r.handleLogout)
}

func (r *Router) registerReservations() {
	introspect := r.sdk.IntrospectMiddleware(adaptive.MiddlewareConfig{})

	routes := map[string]http.HandlerFunc{
		"POST /reservations":        r.handleCreateReservation,
		"GET /reservations":         r.handleListReservations,
		"GET /reservations/{id}":    r.handleGetReservation,
		"PUT /reservations/{id}":    r.handleUpdateReservation,
		"DELETE /reservations/{id}": r.handleDeleteReservation,
	}
	for pattern, handler := range routes {
		r.Mux.Handle(pattern, httpx.Chain(handler,
			introspect,
			httpx.RequireAnyScope("openid"),
		))
	}
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"uptime":  time.Since(r.startTime).String(),
			"version": r.buildVersion,
		})
	})
}
