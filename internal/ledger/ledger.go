package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
)

// Repository is the persistence boundary for balance accounts. Credit and
// Debit must be atomic; Debit must refuse to take the balance below zero.
type Repository interface {
	GetByAccountType(accountType string) (*balanceDatamodel.Balance, error)
	GetAll() ([]*balanceDatamodel.Balance, error)
	Credit(accountType string, amount decimal.Decimal, updatedBy int64, at time.Time) error
	Debit(accountType string, amount decimal.Decimal, updatedBy int64, at time.Time) error
	SumCommittedOutflow(accountType string) (decimal.Decimal, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AddFunds credits the account, increasing both the running balance and the
// lifetime received total.
func (s *Service) AddFunds(ctx context.Context, accountType string, amount decimal.Decimal, actingUserID int64) error {
	if !balanceDatamodel.ValidAccountType(accountType) {
		return internal.NewValidationError("invalid account type", internal.ErrCodeValidationFailed)
	}
	if !amount.IsPositive() {
		return internal.NewValidationError("amount must be greater than zero", internal.ErrCodeInvalidAmount)
	}

	if err := s.repo.Credit(accountType, amount, actingUserID, time.Now()); err != nil {
		s.logger.Error("failed to credit account", "error", err, "account_type", accountType)
		return err
	}

	s.logger.Info("funds added", "account_type", accountType, "amount", amount.String(), "by", actingUserID)
	return nil
}

// DeductFunds debits the account. The repository enforces the balance floor,
// so a concurrent debit that would overdraw loses cleanly instead of racing.
func (s *Service) DeductFunds(ctx context.Context, accountType string, amount decimal.Decimal, actingUserID int64) error {
	if !balanceDatamodel.ValidAccountType(accountType) {
		return internal.NewValidationError("invalid account type", internal.ErrCodeValidationFailed)
	}
	if !amount.IsPositive() {
		return internal.NewValidationError("amount must be greater than zero", internal.ErrCodeInvalidAmount)
	}

	if err := s.repo.Debit(accountType, amount, actingUserID, time.Now()); err != nil {
		if err == internal.ErrInsufficientBalance {
			s.logger.Warn("debit refused, insufficient balance",
				"account_type", accountType, "amount", amount.String())
		} else {
			s.logger.Error("failed to debit account", "error", err, "account_type", accountType)
		}
		return err
	}

	s.logger.Info("funds deducted", "account_type", accountType, "amount", amount.String(), "by", actingUserID)
	return nil
}

// GetBalance returns the stored balance record for one account.
func (s *Service) GetBalance(ctx context.Context, accountType string) (*balanceDatamodel.Balance, error) {
	if !balanceDatamodel.ValidAccountType(accountType) {
		return nil, internal.NewValidationError("invalid account type", internal.ErrCodeValidationFailed)
	}
	return s.repo.GetByAccountType(accountType)
}

// GetBalances returns all balance accounts.
func (s *Service) GetBalances(ctx context.Context) ([]*balanceDatamodel.Balance, error) {
	return s.repo.GetAll()
}

// CurrentAvailable is the stored balance minus the outflow already committed
// to in-flight transactions. It is recomputed on every call; stale snapshots
// of in-flight spend are worse than the extra query.
func (s *Service) CurrentAvailable(ctx context.Context, accountType string) (decimal.Decimal, error) {
	if !balanceDatamodel.ValidAccountType(accountType) {
		return decimal.Zero, internal.NewValidationError("invalid account type", internal.ErrCodeValidationFailed)
	}

	balance, err := s.repo.GetByAccountType(accountType)
	if err != nil {
		return decimal.Zero, err
	}

	committed, err := s.repo.SumCommittedOutflow(accountType)
	if err != nil {
		return decimal.Zero, err
	}

	return balance.CurrentBalance.Sub(committed), nil
}
