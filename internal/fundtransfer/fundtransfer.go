package fundtransfer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	fundtransferDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/fundtransfer"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
)

type Repository interface {
	Create(transfer *fundtransferDatamodel.FundTransfer) error
	GetByID(id int64) (*fundtransferDatamodel.FundTransfer, error)
	List(limit, offset int) ([]*fundtransferDatamodel.FundTransfer, error)
	MarkDeleted(id int64) error
}

// Ledger is the balance side of a completed transfer.
type Ledger interface {
	AddFunds(ctx context.Context, accountType string, amount decimal.Decimal, actingUserID int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// CreateFundTransferDTO credits the petty cash float.
type CreateFundTransferDTO struct {
	TransferType string          `json:"transfer_type" validate:"required,oneof=bank cash"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	TransferDate time.Time       `json:"transfer_date"`
	Notes        string          `json:"notes,omitempty"`
}

func (dto CreateFundTransferDTO) Validate() error {
	if dto.TransferType != fundtransferDatamodel.TypeBank && dto.TransferType != fundtransferDatamodel.TypeCash {
		return errors.New("transfer type must be bank or cash")
	}
	if !dto.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	return nil
}

type Service struct {
	repo   Repository
	ledger Ledger
	policy *approval.Policy
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, ledger Ledger, policy *approval.Policy, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		policy: policy,
		bus:    bus,
		logger: logger,
	}
}

// Create records an incoming transfer and credits the matching ledger
// account. A bank transfer feeds the bank float, a cash top-up the physical
// float. If the credit fails the transfer record is voided so the two never
// disagree.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, dto CreateFundTransferDTO) (*fundtransferDatamodel.FundTransfer, error) {
	if !s.policy.CanManageUsers(principal) {
		return nil, internal.NewForbiddenError("only administrators and managers can record fund transfers", internal.ErrCodeNotOwner)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidAmount)
	}

	transferDate := dto.TransferDate
	if transferDate.IsZero() {
		transferDate = time.Now()
	}

	transfer := &fundtransferDatamodel.FundTransfer{
		TransferType: dto.TransferType,
		Amount:       dto.Amount,
		InitiatedBy:  principal.ID,
		TransferDate: transferDate,
		Notes:        dto.Notes,
		Status:       fundtransferDatamodel.StatusCompleted,
	}

	if err := s.repo.Create(transfer); err != nil {
		s.logger.Error("failed to create fund transfer", "error", err, "user_id", principal.ID)
		return nil, err
	}

	accountType := accountForTransferType(dto.TransferType)
	if err := s.ledger.AddFunds(ctx, accountType, dto.Amount, principal.ID); err != nil {
		s.logger.Error("ledger credit failed, voiding transfer",
			"error", err, "transfer_id", transfer.ID, "account_type", accountType)
		if delErr := s.repo.MarkDeleted(transfer.ID); delErr != nil {
			s.logger.Error("failed to void transfer after credit failure",
				"error", delErr, "transfer_id", transfer.ID)
		}
		return nil, err
	}

	s.publish(ctx, events.NewFundsTransferredEvent(transfer.ID, dto.TransferType, dto.Amount.String(), principal.ID))

	s.logger.Info("fund transfer recorded",
		"transfer_id", transfer.ID,
		"type", dto.TransferType,
		"amount", dto.Amount.String(),
		"by", principal.ID)

	return transfer, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*fundtransferDatamodel.FundTransfer, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*fundtransferDatamodel.FundTransfer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(limit, offset)
}

// Delete soft-deletes a transfer. Admin only. The ledger credit already
// applied is deliberately left in place; reversal requires an explicit
// compensating entry.
func (s *Service) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	if !s.policy.IsAdmin(principal) {
		return internal.NewForbiddenError("only administrators can delete fund transfers", internal.ErrCodeNotOwner)
	}

	transfer, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.MarkDeleted(id); err != nil {
		return err
	}

	s.logger.Warn("fund transfer deleted; ledger credit not reversed",
		"transfer_id", id,
		"amount", transfer.Amount.String(),
		"by", principal.ID)

	return nil
}

func accountForTransferType(transferType string) string {
	if transferType == fundtransferDatamodel.TypeCash {
		return balanceDatamodel.AccountPettyCashPhysical
	}
	return balanceDatamodel.AccountPettyCashBank
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish fund transfer event", "error", err, "event_type", event.EventType())
	}
}
