package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/Poorani-S/pettycash-backend/internal/audit"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	"github.com/Poorani-S/pettycash-backend/internal/category"
	"github.com/Poorani-S/pettycash-backend/internal/client"
	"github.com/Poorani-S/pettycash-backend/internal/fundtransfer"
	"github.com/Poorani-S/pettycash-backend/internal/ledger"
	"github.com/Poorani-S/pettycash-backend/internal/report"
	"github.com/Poorani-S/pettycash-backend/internal/transaction"
	"github.com/Poorani-S/pettycash-backend/internal/transport/middleware"
	"github.com/Poorani-S/pettycash-backend/internal/transport/swagger"
	"github.com/Poorani-S/pettycash-backend/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	Transaction  *transaction.Handler
	Ledger       *ledger.Handler
	FundTransfer *fundtransfer.Handler
	Category     *category.Handler
	Client       *client.Handler
	User         *user.Handler
	Audit        *audit.Handler
	Report       *report.Handler
}

func RegisterAllRoutes(router *chi.Mux, pingDB *sqlx.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(pingDB)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/request-otp", h.Auth.RequestOTP)
				sr.Post("/verify-otp", h.Auth.VerifyOTP)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// Category listing is readable without a session so the login and
		// expense forms can populate dropdowns.
		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			if h.Transaction != nil {
				pr.Route("/transactions", func(tr chi.Router) {
					tr.Post("/", h.Transaction.CreateTransaction)
					tr.Get("/", h.Transaction.GetTransactions)
					tr.Get("/{id}", h.Transaction.GetTransaction)
					tr.Patch("/{id}", h.Transaction.UpdateTransaction)
					tr.Delete("/{id}", h.Transaction.DeleteTransaction)
					tr.Patch("/{id}/submit", h.Transaction.SubmitTransaction)
					tr.Patch("/{id}/approve", h.Transaction.ApproveTransaction)
					tr.Patch("/{id}/reject", h.Transaction.RejectTransaction)
					tr.Patch("/{id}/request-info", h.Transaction.RequestTransactionInfo)
					tr.Patch("/{id}/resubmit", h.Transaction.ResubmitTransaction)
					tr.Patch("/{id}/pay", h.Transaction.PayTransaction)
					tr.Post("/{id}/invoice", h.Transaction.UploadInvoice)
					tr.Post("/{id}/payment-proof", h.Transaction.UploadPaymentProof)
				})
			}

			if h.Ledger != nil {
				pr.Route("/balances", func(br chi.Router) {
					br.Get("/", h.Ledger.GetBalances)
					br.Get("/{accountType}", h.Ledger.GetBalance)
					br.Get("/{accountType}/available", h.Ledger.GetAvailable)
				})
			}

			if h.FundTransfer != nil {
				pr.Route("/fund-transfers", func(fr chi.Router) {
					fr.Post("/", h.FundTransfer.CreateFundTransfer)
					fr.Get("/", h.FundTransfer.GetFundTransfers)
					fr.Get("/{id}", h.FundTransfer.GetFundTransfer)
					fr.Delete("/{id}", h.FundTransfer.DeleteFundTransfer)
				})
			}

			if h.Category != nil {
				pr.Route("/categories", func(cr chi.Router) {
					cr.Post("/", h.Category.CreateCategory)
					cr.Get("/{id}", h.Category.GetCategory)
					cr.Patch("/{id}", h.Category.UpdateCategory)
					cr.Delete("/{id}", h.Category.DeactivateCategory)
				})
			}

			if h.Client != nil {
				pr.Route("/clients", func(cr chi.Router) {
					cr.Post("/", h.Client.CreateClient)
					cr.Get("/", h.Client.GetClients)
					cr.Get("/{id}", h.Client.GetClient)
					cr.Patch("/{id}", h.Client.UpdateClient)
					cr.Delete("/{id}", h.Client.DeleteClient)
				})
			}

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Post("/", h.User.CreateUser)
					ur.Get("/", h.User.GetUsers)
					ur.Get("/{id}", h.User.GetUser)
					ur.Patch("/{id}", h.User.UpdateUser)
					ur.Patch("/{id}/role", h.User.ChangeUserRole)
					ur.Patch("/{id}/deactivate", h.User.DeactivateUser)
					ur.Patch("/{id}/reactivate", h.User.ReactivateUser)
				})
			}

			if h.Audit != nil {
				pr.Route("/audit", func(ar chi.Router) {
					ar.Get("/logs", h.Audit.GetAuditLogs)
					ar.Get("/login-activity", h.Audit.GetLoginActivity)
					ar.Get("/user-activity", h.Audit.GetUserActivity)
				})
			}

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Get("/transactions.pdf", h.Report.TransactionsPDF)
					rr.Get("/transactions.csv", h.Report.TransactionsCSV)
					rr.Get("/login-activity.csv", h.Report.LoginActivityCSV)
				})
			}
		})
	})
}
