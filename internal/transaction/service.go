package transaction

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
)

// Repository is the persistence boundary for transactions. ApproveAndDeduct
// must perform the status transition and the ledger debit in one unit of
// work; a failed debit leaves the status untouched.
type Repository interface {
	Create(t *transactionDatamodel.Transaction) error
	GetByID(id int64) (*transactionDatamodel.Transaction, error)
	List(filters ListFilters) ([]*transactionDatamodel.Transaction, error)
	Count(filters ListFilters) (int64, error)
	Update(t *transactionDatamodel.Transaction) error
	TransitionStatus(id int64, from []string, to string, updates map[string]interface{}) error
	ApproveAndDeduct(id int64, from []string, approverID int64, accountType string, amount decimal.Decimal, at time.Time) error
	Delete(id int64) error
}

// ResubmitPolicy governs which fields the original submitter may change when
// looping an info_requested transaction back into review.
type ResubmitPolicy struct {
	AllowAmountChange   bool
	AllowCategoryChange bool
}

// DefaultResubmitPolicy permits amount and category changes on resubmission.
func DefaultResubmitPolicy() ResubmitPolicy {
	return ResubmitPolicy{AllowAmountChange: true, AllowCategoryChange: true}
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo           Repository
	policy         *approval.Policy
	bus            EventPublisher
	resubmitPolicy ResubmitPolicy
	logger         *slog.Logger
}

func NewService(repo Repository, policy *approval.Policy, bus EventPublisher, resubmitPolicy ResubmitPolicy, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		policy:         policy,
		bus:            bus,
		resubmitPolicy: resubmitPolicy,
		logger:         logger,
	}
}

// Create validates and persists a new transaction as draft or pending.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, dto CreateTransactionDTO) (*transactionDatamodel.Transaction, error) {
	if err := s.policy.CanWrite(principal); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Error("transaction validation failed", "error", err, "user_id", principal.ID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	status := transactionDatamodel.StatusPending
	if dto.SaveAsDraft {
		status = transactionDatamodel.StatusDraft
	}

	t := &transactionDatamodel.Transaction{
		CategoryID:      dto.CategoryID,
		RequestedBy:     principal.ID,
		SubmittedBy:     principal.ID,
		Purpose:         dto.Purpose,
		PayeeName:       dto.PayeeName,
		HasGSTInvoice:   dto.HasGSTInvoice,
		Status:          status,
		PaymentMethod:   dto.PaymentMethod,
		TransactionDate: dto.TransactionDate,
	}
	deriveAmounts(t, dto.PreTaxAmount, dto.TaxAmount, dto.Amount)

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create transaction", "error", err, "user_id", principal.ID)
		return nil, err
	}

	s.publish(ctx, events.NewTransactionEvent(events.EventTypeTransactionCreated,
		t.ID, t.TransactionNumber, EffectiveAmount(t).Value.String(), principal.ID, ""))

	s.logger.Info("transaction created",
		"transaction_id", t.ID,
		"transaction_number", t.TransactionNumber,
		"status", status,
		"user_id", principal.ID)

	return t, nil
}

// Get loads a transaction, enforcing ownership for non-admin principals.
func (s *Service) Get(ctx context.Context, principal *auth.Principal, id int64) (*transactionDatamodel.Transaction, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanAccess(principal, t.SubmittedBy, t.RequestedBy); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns transactions visible to the principal. Non-admin,
// non-approver principals only see their own.
func (s *Service) List(ctx context.Context, principal *auth.Principal, filters ListFilters) ([]*transactionDatamodel.Transaction, int64, error) {
	if !s.policy.IsAdmin(principal) && !s.canReview(principal) {
		filters.SubmittedBy = principal.ID
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	items, err := s.repo.List(filters)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(filters)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update mutates a draft. Only the submitter may edit, and only before
// submission.
func (s *Service) Update(ctx context.Context, principal *auth.Principal, id int64, dto UpdateTransactionDTO) (*transactionDatamodel.Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t.SubmittedBy != principal.ID && !s.policy.IsAdmin(principal) {
		return nil, internal.ErrNotOwner
	}
	if t.Status != transactionDatamodel.StatusDraft {
		return nil, internal.ErrInvalidStatus
	}

	if dto.CategoryID != nil {
		t.CategoryID = *dto.CategoryID
	}
	if dto.Purpose != nil {
		t.Purpose = *dto.Purpose
	}
	if dto.PayeeName != nil {
		t.PayeeName = *dto.PayeeName
	}
	if dto.HasGSTInvoice != nil {
		t.HasGSTInvoice = *dto.HasGSTInvoice
	}
	if dto.PaymentMethod != nil {
		t.PaymentMethod = *dto.PaymentMethod
	}
	if dto.TransactionDate != nil {
		t.TransactionDate = *dto.TransactionDate
	}
	if dto.PreTaxAmount != nil || dto.Amount != nil {
		deriveAmounts(t, dto.PreTaxAmount, dto.TaxAmount, dto.Amount)
	}

	if err := s.repo.Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Submit moves a draft or pending transaction into review.
func (s *Service) Submit(ctx context.Context, principal *auth.Principal, id int64) (*transactionDatamodel.Transaction, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t.SubmittedBy != principal.ID && !s.policy.IsAdmin(principal) {
		return nil, internal.ErrNotOwner
	}
	if !CanTransition(t.Status, transactionDatamodel.StatusPendingApproval) {
		return nil, internal.ErrInvalidStatus
	}

	err = s.repo.TransitionStatus(id,
		[]string{transactionDatamodel.StatusDraft, transactionDatamodel.StatusPending},
		transactionDatamodel.StatusPendingApproval, nil)
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(id)
}

// Approve runs the approval policy and, in one unit of work, marks the
// transaction approved and debits the owning ledger account. A failed debit
// leaves the transaction in its current status and surfaces
// ErrInsufficientFunds.
func (s *Service) Approve(ctx context.Context, principal *auth.Principal, id int64) (*transactionDatamodel.Transaction, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, transactionDatamodel.StatusApproved) {
		return nil, internal.ErrInvalidStatus
	}

	amount := EffectiveAmount(t)
	if err := s.policy.CanApprove(principal, amount.Value); err != nil {
		s.logger.Warn("approval denied by policy",
			"transaction_id", id,
			"approver_id", principal.ID,
			"amount", amount.Value.String(),
			"error", err)
		return nil, err
	}

	accountType := balanceDatamodel.AccountForPaymentMethod(t.PaymentMethod)
	now := time.Now()

	err = s.repo.ApproveAndDeduct(id,
		[]string{transactionDatamodel.StatusPending, transactionDatamodel.StatusPendingApproval},
		principal.ID, accountType, amount.Value, now)
	if err != nil {
		if err == internal.ErrInsufficientBalance {
			return nil, internal.ErrInsufficientFunds
		}
		return nil, err
	}

	s.publish(ctx, events.NewTransactionEvent(events.EventTypeTransactionApproved,
		t.ID, t.TransactionNumber, amount.Value.String(), principal.ID, ""))

	s.logger.Info("transaction approved",
		"transaction_id", id,
		"approver_id", principal.ID,
		"amount", amount.Value.String(),
		"account_type", accountType)

	return s.repo.GetByID(id)
}

// Reject marks the transaction rejected; a comment is mandatory.
func (s *Service) Reject(ctx context.Context, principal *auth.Principal, id int64, dto RejectTransactionDTO) (*transactionDatamodel.Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeCommentRequired)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, transactionDatamodel.StatusRejected) {
		return nil, internal.ErrInvalidStatus
	}
	if err := s.policy.CanApprove(principal, EffectiveAmount(t).Value); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.TransitionStatus(id,
		[]string{transactionDatamodel.StatusPending, transactionDatamodel.StatusPendingApproval},
		transactionDatamodel.StatusRejected,
		map[string]interface{}{
			"rejected_by":   principal.ID,
			"rejected_at":   now,
			"admin_comment": dto.Comment,
		})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewTransactionEvent(events.EventTypeTransactionRejected,
		t.ID, t.TransactionNumber, EffectiveAmount(t).Value.String(), principal.ID, dto.Comment))

	return s.repo.GetByID(id)
}

// RequestInfo sends a transaction back to its submitter for clarification.
func (s *Service) RequestInfo(ctx context.Context, principal *auth.Principal, id int64, dto RequestInfoDTO) (*transactionDatamodel.Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeCommentRequired)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, transactionDatamodel.StatusInfoRequested) {
		return nil, internal.ErrInvalidStatus
	}
	if err := s.policy.CanApprove(principal, EffectiveAmount(t).Value); err != nil {
		return nil, err
	}

	err = s.repo.TransitionStatus(id,
		[]string{transactionDatamodel.StatusPendingApproval},
		transactionDatamodel.StatusInfoRequested,
		map[string]interface{}{"info_request_comment": dto.Comment})
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(id)
}

// Resubmit loops an info_requested transaction back into review. Only the
// original submitter may resubmit; field-mutation scope follows the
// configured resubmission policy.
func (s *Service) Resubmit(ctx context.Context, principal *auth.Principal, id int64, dto ResubmitTransactionDTO) (*transactionDatamodel.Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t.SubmittedBy != principal.ID {
		return nil, internal.ErrNotOwner
	}
	if !CanTransition(t.Status, transactionDatamodel.StatusPendingApproval) ||
		t.Status != transactionDatamodel.StatusInfoRequested {
		return nil, internal.ErrInvalidStatus
	}

	if (dto.PreTaxAmount != nil || dto.Amount != nil) && !s.resubmitPolicy.AllowAmountChange {
		return nil, internal.NewForbiddenError("amount changes are not permitted on resubmission", internal.ErrCodeValidationFailed)
	}
	if dto.CategoryID != nil && !s.resubmitPolicy.AllowCategoryChange {
		return nil, internal.NewForbiddenError("category changes are not permitted on resubmission", internal.ErrCodeValidationFailed)
	}

	if dto.CategoryID != nil {
		t.CategoryID = *dto.CategoryID
	}
	if dto.Purpose != nil {
		t.Purpose = *dto.Purpose
	}
	if dto.HasGSTInvoice != nil {
		t.HasGSTInvoice = *dto.HasGSTInvoice
	}
	if dto.PreTaxAmount != nil || dto.Amount != nil {
		deriveAmounts(t, dto.PreTaxAmount, dto.TaxAmount, dto.Amount)
	}
	t.Status = transactionDatamodel.StatusPendingApproval
	t.InfoRequestComment = nil

	if err := s.repo.Update(t); err != nil {
		return nil, err
	}

	s.logger.Info("transaction resubmitted", "transaction_id", id, "user_id", principal.ID)
	return t, nil
}

// Pay records payment on an approved transaction. Re-recording payment on an
// already-paid transaction is a no-op success.
func (s *Service) Pay(ctx context.Context, principal *auth.Principal, id int64) (*transactionDatamodel.Transaction, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if t.Status == transactionDatamodel.StatusPaid {
		return t, nil
	}
	if !CanTransition(t.Status, transactionDatamodel.StatusPaid) {
		return nil, internal.ErrInvalidStatus
	}
	if !s.policy.IsAdmin(principal) && t.SubmittedBy != principal.ID {
		return nil, internal.ErrNotOwner
	}

	now := time.Now()
	err = s.repo.TransitionStatus(id,
		[]string{transactionDatamodel.StatusApproved},
		transactionDatamodel.StatusPaid,
		map[string]interface{}{"paid_at": now})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewTransactionEvent(events.EventTypeTransactionPaid,
		t.ID, t.TransactionNumber, EffectiveAmount(t).Value.String(), principal.ID, ""))

	return s.repo.GetByID(id)
}

// Delete removes a transaction. Admin only. An approved or paid transaction
// has already debited the ledger; deletion does not credit it back, an
// explicit compensating fund transfer is required.
func (s *Service) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	if !s.policy.IsAdmin(principal) {
		return internal.NewForbiddenError("only administrators can delete transactions", internal.ErrCodeNotOwner)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if t.Status == transactionDatamodel.StatusApproved || t.Status == transactionDatamodel.StatusPaid {
		s.logger.Warn("deleted transaction had already debited the ledger; no automatic compensation applied",
			"transaction_id", id,
			"status", t.Status,
			"amount", EffectiveAmount(t).Value.String())
	}

	s.publish(ctx, events.NewTransactionEvent(events.EventTypeTransactionDeleted,
		t.ID, t.TransactionNumber, EffectiveAmount(t).Value.String(), principal.ID, ""))

	return nil
}

// AttachInvoice stores an uploaded invoice reference on the transaction.
func (s *Service) AttachInvoice(ctx context.Context, principal *auth.Principal, id int64, path string) error {
	return s.attachFile(principal, id, "invoice_path", path)
}

// AttachPaymentProof stores an uploaded payment proof reference.
func (s *Service) AttachPaymentProof(ctx context.Context, principal *auth.Principal, id int64, path string) error {
	return s.attachFile(principal, id, "payment_proof_path", path)
}

func (s *Service) attachFile(principal *auth.Principal, id int64, column, path string) error {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.policy.CanAccess(principal, t.SubmittedBy, t.RequestedBy); err != nil {
		return err
	}
	if err := s.policy.CanWrite(principal); err != nil {
		return err
	}

	switch column {
	case "invoice_path":
		t.InvoicePath = &path
	case "payment_proof_path":
		t.PaymentProofPath = &path
	}
	return s.repo.Update(t)
}

func (s *Service) canReview(principal *auth.Principal) bool {
	switch principal.Role {
	case userDatamodel.RoleManager, userDatamodel.RoleApprover, userDatamodel.RoleAuditor:
		return true
	}
	return false
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish transaction event", "error", err, "event_type", event.EventType())
	}
}
