package report

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	auditDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/audit"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
	"github.com/Poorani-S/pettycash-backend/internal/transaction"
)

// Filters narrow the transactions included in a report.
type Filters struct {
	Status     string
	CategoryID int64
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Row is one reported transaction with its category name resolved.
type Row struct {
	TransactionNumber string
	CategoryName      string
	Purpose           string
	PayeeName         string
	Amount            decimal.Decimal
	PaymentMethod     string
	Status            string
	TransactionDate   time.Time
}

// StatusTotal aggregates one status bucket.
type StatusTotal struct {
	Status string
	Count  int
	Total  decimal.Decimal
}

// TransactionReport is the fully materialized report, ready for rendering.
type TransactionReport struct {
	GeneratedAt time.Time
	GeneratedBy string
	DateFrom    *time.Time
	DateTo      *time.Time
	Rows        []Row
	Totals      []StatusTotal
	GrandTotal  decimal.Decimal
}

type Repository interface {
	ListTransactions(filters Filters) ([]*transactionDatamodel.Transaction, error)
	CategoryNames() (map[int64]string, error)
	ListLoginActivity(from, to *time.Time, limit int) ([]*auditDatamodel.LoginActivity, error)
}

// Service builds reports from committed state. It only ever reads; report
// generation must not mutate transactions, balances or audit rows.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) canGenerate(principal *auth.Principal) bool {
	switch principal.Role {
	case userDatamodel.RoleAdmin, userDatamodel.RoleAuditor, userDatamodel.RoleManager:
		return true
	}
	return false
}

// BuildTransactionReport assembles rows and per-status totals for the given
// window.
func (s *Service) BuildTransactionReport(principal *auth.Principal, filters Filters) (*TransactionReport, error) {
	if !s.canGenerate(principal) {
		return nil, internal.NewForbiddenError("only administrators, auditors and managers can generate reports", internal.ErrCodeNotOwner)
	}

	txns, err := s.repo.ListTransactions(filters)
	if err != nil {
		s.logger.Error("failed to query transactions for report", "error", err)
		return nil, err
	}

	categories, err := s.repo.CategoryNames()
	if err != nil {
		s.logger.Error("failed to resolve category names for report", "error", err)
		return nil, err
	}

	rpt := &TransactionReport{
		GeneratedAt: time.Now(),
		GeneratedBy: principal.Name,
		DateFrom:    filters.DateFrom,
		DateTo:      filters.DateTo,
		GrandTotal:  decimal.Zero,
	}

	byStatus := make(map[string]*StatusTotal)
	for _, t := range txns {
		amount := transaction.EffectiveAmount(t).Value

		rpt.Rows = append(rpt.Rows, Row{
			TransactionNumber: t.TransactionNumber,
			CategoryName:      categories[t.CategoryID],
			Purpose:           t.Purpose,
			PayeeName:         t.PayeeName,
			Amount:            amount,
			PaymentMethod:     t.PaymentMethod,
			Status:            t.Status,
			TransactionDate:   t.TransactionDate,
		})

		bucket, ok := byStatus[t.Status]
		if !ok {
			bucket = &StatusTotal{Status: t.Status, Total: decimal.Zero}
			byStatus[t.Status] = bucket
		}
		bucket.Count++
		bucket.Total = bucket.Total.Add(amount)
		rpt.GrandTotal = rpt.GrandTotal.Add(amount)
	}

	// Stable output order regardless of map iteration.
	for _, status := range []string{
		transactionDatamodel.StatusDraft,
		transactionDatamodel.StatusPending,
		transactionDatamodel.StatusPendingApproval,
		transactionDatamodel.StatusInfoRequested,
		transactionDatamodel.StatusApproved,
		transactionDatamodel.StatusRejected,
		transactionDatamodel.StatusPaid,
	} {
		if bucket, ok := byStatus[status]; ok {
			rpt.Totals = append(rpt.Totals, *bucket)
		}
	}

	return rpt, nil
}

// LoginActivity lists login attempts for the window, most recent first.
func (s *Service) LoginActivity(principal *auth.Principal, from, to *time.Time, limit int) ([]*auditDatamodel.LoginActivity, error) {
	if !s.canGenerate(principal) {
		return nil, internal.NewForbiddenError("only administrators, auditors and managers can generate reports", internal.ErrCodeNotOwner)
	}
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	return s.repo.ListLoginActivity(from, to, limit)
}
