package fundtransfer

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeBank = "bank"
	TypeCash = "cash"

	StatusCompleted = "completed"
	StatusDeleted   = "deleted"
)

type FundTransfer struct {
	ID           int64           `gorm:"primaryKey"`
	TransferType string          `gorm:"column:transfer_type;not null"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric;not null"`
	InitiatedBy  int64           `gorm:"column:initiated_by;not null"`
	TransferDate time.Time       `gorm:"column:transfer_date;type:date"`
	Status       string          `gorm:"column:status;default:completed"`
	Notes        string          `gorm:"column:notes"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (FundTransfer) TableName() string {
	return "fund_transfers"
}
