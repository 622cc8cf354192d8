package router

import (
	"net/http"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/auth"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/dashboard"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/diagnostics"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/invoices"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/jobs"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/middleware"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/notifications"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/payments"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/payouts"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/promos"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/symptoms"
)

// Deps carries the handlers and auth pieces the route table wires together.
type Deps struct {
	Auth          *auth.Handler
	Jobs          *jobs.Handler
	Invoices      *invoices.Handler
	Promos        *promos.Handler
	Payouts       *payouts.Handler
	Payments      *payments.Handler
	Webhook       *payments.WebhookHandler
	Symptoms      *symptoms.Handler
	Dashboard     *dashboard.Handler
	Notifications *notifications.Handler
	Diagnostics   *diagnostics.Handler

	TokenValidator middleware.TokenValidator
	CronSecret     string
	AdminSecret    string
}

// New returns the API handler. Middleware chain per route: bearer auth for
// user routes, shared secrets for the scheduler and admin surfaces, nothing
// for the webhook (it authenticates by signature).
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	withUser := middleware.BearerAuth(d.TokenValidator)
	withCron := middleware.SharedSecretAuth(d.CronSecret)
	withAdmin := middleware.SharedSecretAuth(d.AdminSecret)

	mux.HandleFunc("POST /api/v1/auth/register", d.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", d.Auth.Login)

	mux.Handle("POST /api/v1/jobs", withUser(http.HandlerFunc(d.Jobs.CreateJob)))
	mux.Handle("GET /api/v1/jobs", withUser(http.HandlerFunc(d.Jobs.ListJobs)))
	mux.Handle("GET /api/v1/jobs/{id}", withUser(http.HandlerFunc(d.Jobs.GetJob)))
	mux.Handle("POST /api/v1/jobs/{id}/quotes", withUser(http.HandlerFunc(d.Jobs.SubmitQuote)))
	mux.Handle("POST /api/v1/quotes/{id}/accept", withUser(http.HandlerFunc(d.Jobs.AcceptQuote)))
	mux.Handle("POST /api/v1/jobs/{id}/start", withUser(http.HandlerFunc(d.Jobs.Start)))
	mux.Handle("POST /api/v1/jobs/{id}/adjustments", withUser(http.HandlerFunc(d.Jobs.AddAdjustment)))
	mux.Handle("POST /api/v1/adjustments/{id}/approve", withUser(http.HandlerFunc(d.Jobs.ApproveAdjustment)))
	mux.Handle("POST /api/v1/jobs/{id}/verify", withUser(http.HandlerFunc(d.Jobs.Verify)))
	mux.Handle("POST /api/v1/jobs/{id}/cancel", withUser(http.HandlerFunc(d.Jobs.Cancel)))
	mux.Handle("POST /api/v1/jobs/{id}/dispute", withUser(http.HandlerFunc(d.Jobs.Dispute)))

	mux.Handle("POST /api/v1/invoices/lock", withUser(http.HandlerFunc(d.Invoices.Lock)))
	mux.Handle("GET /api/v1/jobs/{id}/invoice", withUser(http.HandlerFunc(d.Invoices.GetByJob)))

	mux.Handle("POST /api/v1/promos/validate", withUser(http.HandlerFunc(d.Promos.Validate)))
	mux.Handle("POST /api/v1/promos/apply", withUser(http.HandlerFunc(d.Promos.Apply)))

	mux.Handle("POST /api/v1/payouts/run", withCron(http.HandlerFunc(d.Payouts.Run)))

	mux.Handle("POST /api/v1/payments/intent", withUser(http.HandlerFunc(d.Payments.CreateIntent)))
	mux.Handle("GET /api/v1/payments/{id}", withUser(http.HandlerFunc(d.Payments.GetPayment)))
	mux.HandleFunc("POST /api/v1/payments/webhook", d.Webhook.Handle)

	mux.Handle("POST /api/v1/symptoms/resolve", withUser(http.HandlerFunc(d.Symptoms.Resolve)))

	mux.Handle("GET /api/v1/notifications", withUser(http.HandlerFunc(d.Notifications.List)))
	mux.Handle("POST /api/v1/notifications/push-token", withUser(http.HandlerFunc(d.Notifications.RegisterPushToken)))

	mux.Handle("GET /api/v1/mechanic/ledger", withUser(http.HandlerFunc(d.Dashboard.Ledger)))
	mux.Handle("GET /api/v1/mechanic/transfers", withUser(http.HandlerFunc(d.Dashboard.Transfers)))
	mux.Handle("GET /api/v1/mechanic/earnings", withUser(http.HandlerFunc(d.Dashboard.Earnings)))

	mux.Handle("GET /api/v1/admin/query-errors", withAdmin(http.HandlerFunc(d.Diagnostics.Recent)))
	mux.Handle("DELETE /api/v1/admin/query-errors", withAdmin(http.HandlerFunc(d.Diagnostics.Clear)))

	return mux
}
