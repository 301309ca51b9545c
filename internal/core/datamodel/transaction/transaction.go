package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusDraft           = "draft"
	StatusPending         = "pending"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusInfoRequested   = "info_requested"
	StatusPaid            = "paid"
)

const (
	PaymentMethodCash         = "cash"
	PaymentMethodUPI          = "upi"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
)

type Transaction struct {
	ID                int64            `gorm:"primaryKey"`
	TransactionNumber string           `gorm:"column:transaction_number;uniqueIndex;not null"`
	CategoryID        int64            `gorm:"column:category_id;not null"`
	RequestedBy       int64            `gorm:"column:requested_by;not null"`
	SubmittedBy       int64            `gorm:"column:submitted_by;not null"`
	Purpose           string           `gorm:"column:purpose"`
	PayeeName         string           `gorm:"column:payee_name"`
	HasGSTInvoice     bool             `gorm:"column:has_gst_invoice;default:false"`
	PreTaxAmount      *decimal.Decimal `gorm:"column:pre_tax_amount;type:numeric"`
	TaxAmount         *decimal.Decimal `gorm:"column:tax_amount;type:numeric"`
	PostTaxAmount     *decimal.Decimal `gorm:"column:post_tax_amount;type:numeric"`
	Amount            *decimal.Decimal `gorm:"column:amount;type:numeric"`
	Status            string           `gorm:"column:status;default:pending"`
	PaymentMethod     string           `gorm:"column:payment_method"`
	TransactionDate   time.Time        `gorm:"column:transaction_date;type:date"`
	InvoicePath       *string          `gorm:"column:invoice_path"`
	PaymentProofPath  *string          `gorm:"column:payment_proof_path"`
	ApprovedBy        *int64           `gorm:"column:approved_by"`
	ApprovedAt        *time.Time       `gorm:"column:approved_at"`
	RejectedBy        *int64           `gorm:"column:rejected_by"`
	RejectedAt        *time.Time       `gorm:"column:rejected_at"`
	AdminComment      *string          `gorm:"column:admin_comment"`
	InfoRequestComment *string         `gorm:"column:info_request_comment"`
	PaidAt            *time.Time       `gorm:"column:paid_at"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
