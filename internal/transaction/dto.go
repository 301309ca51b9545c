package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
)

var validPaymentMethods = map[string]bool{
	transactionDatamodel.PaymentMethodCash:         true,
	transactionDatamodel.PaymentMethodUPI:          true,
	transactionDatamodel.PaymentMethodBankTransfer: true,
	transactionDatamodel.PaymentMethodCard:         true,
}

// CreateTransactionDTO is the request payload for creating a transaction.
// Either a pre-tax amount (with optional explicit tax) or a legacy flat
// amount must be supplied, never neither.
type CreateTransactionDTO struct {
	CategoryID      int64            `json:"category_id" validate:"required"`
	Purpose         string           `json:"purpose" validate:"required,max=500"`
	PayeeName       string           `json:"payee_name,omitempty"`
	HasGSTInvoice   bool             `json:"has_gst_invoice"`
	PreTaxAmount    *decimal.Decimal `json:"pre_tax_amount,omitempty"`
	TaxAmount       *decimal.Decimal `json:"tax_amount,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PaymentMethod   string           `json:"payment_method" validate:"required"`
	TransactionDate time.Time        `json:"transaction_date" validate:"required"`
	SaveAsDraft     bool             `json:"save_as_draft"`
}

func (dto CreateTransactionDTO) Validate() error {
	if dto.CategoryID <= 0 {
		return errors.New("category is required")
	}
	if dto.Purpose == "" {
		return errors.New("purpose is required")
	}
	if len(dto.Purpose) > 500 {
		return errors.New("purpose must be less than 500 characters")
	}
	if dto.PreTaxAmount == nil && dto.Amount == nil {
		return errors.New("amount is required")
	}
	if dto.PreTaxAmount != nil {
		if !dto.PreTaxAmount.IsPositive() {
			return errors.New("pre-tax amount must be greater than 0")
		}
		if dto.TaxAmount != nil && dto.TaxAmount.IsNegative() {
			return errors.New("tax amount cannot be negative")
		}
	} else if !dto.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	if !validPaymentMethods[dto.PaymentMethod] {
		return errors.New("payment method must be one of cash, upi, bank_transfer, card")
	}
	if dto.TransactionDate.IsZero() {
		return errors.New("transaction date is required")
	}
	if dto.TransactionDate.After(time.Now()) {
		return errors.New("transaction date cannot be in the future")
	}
	return nil
}

// UpdateTransactionDTO mutates a draft before submission.
type UpdateTransactionDTO struct {
	CategoryID      *int64           `json:"category_id,omitempty"`
	Purpose         *string          `json:"purpose,omitempty"`
	PayeeName       *string          `json:"payee_name,omitempty"`
	HasGSTInvoice   *bool            `json:"has_gst_invoice,omitempty"`
	PreTaxAmount    *decimal.Decimal `json:"pre_tax_amount,omitempty"`
	TaxAmount       *decimal.Decimal `json:"tax_amount,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PaymentMethod   *string          `json:"payment_method,omitempty"`
	TransactionDate *time.Time       `json:"transaction_date,omitempty"`
}

func (dto UpdateTransactionDTO) Validate() error {
	if dto.CategoryID != nil && *dto.CategoryID <= 0 {
		return errors.New("category must be valid")
	}
	if dto.Purpose != nil && *dto.Purpose == "" {
		return errors.New("purpose cannot be empty")
	}
	if dto.PreTaxAmount != nil && !dto.PreTaxAmount.IsPositive() {
		return errors.New("pre-tax amount must be greater than 0")
	}
	if dto.Amount != nil && !dto.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	if dto.PaymentMethod != nil && !validPaymentMethods[*dto.PaymentMethod] {
		return errors.New("payment method must be one of cash, upi, bank_transfer, card")
	}
	if dto.TransactionDate != nil && dto.TransactionDate.After(time.Now()) {
		return errors.New("transaction date cannot be in the future")
	}
	return nil
}

// RejectTransactionDTO carries the mandatory rejection comment.
type RejectTransactionDTO struct {
	Comment string `json:"comment" validate:"required"`
}

func (dto RejectTransactionDTO) Validate() error {
	if dto.Comment == "" {
		return errors.New("a comment is required when rejecting a transaction")
	}
	return nil
}

// RequestInfoDTO carries the mandatory description of the information the
// approver needs.
type RequestInfoDTO struct {
	Comment string `json:"comment" validate:"required"`
}

func (dto RequestInfoDTO) Validate() error {
	if dto.Comment == "" {
		return errors.New("a comment describing the requested information is required")
	}
	return nil
}

// ResubmitTransactionDTO loops an info_requested transaction back into
// review. Which fields the submitter may change is governed by the service's
// resubmission policy.
type ResubmitTransactionDTO struct {
	CategoryID    *int64           `json:"category_id,omitempty"`
	Purpose       *string          `json:"purpose,omitempty"`
	HasGSTInvoice *bool            `json:"has_gst_invoice,omitempty"`
	PreTaxAmount  *decimal.Decimal `json:"pre_tax_amount,omitempty"`
	TaxAmount     *decimal.Decimal `json:"tax_amount,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Comment       string           `json:"comment,omitempty"`
}

func (dto ResubmitTransactionDTO) Validate() error {
	if dto.CategoryID != nil && *dto.CategoryID <= 0 {
		return errors.New("category must be valid")
	}
	if dto.PreTaxAmount != nil && !dto.PreTaxAmount.IsPositive() {
		return errors.New("pre-tax amount must be greater than 0")
	}
	if dto.Amount != nil && !dto.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	return nil
}

// ListFilters narrows transaction listings. Zero values mean "no filter".
type ListFilters struct {
	Status        string
	CategoryID    int64
	SubmittedBy   int64
	PaymentMethod string
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Offset        int
}
