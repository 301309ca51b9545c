package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountPettyCashBank     = "petty_cash_bank"
	AccountPettyCashPhysical = "petty_cash_physical"
)

// Balance is the per-account-type ledger snapshot. Mutated only through the
// ledger service's guarded updates, never by direct field assignment.
type Balance struct {
	ID             int64           `gorm:"primaryKey"`
	AccountType    string          `gorm:"column:account_type;uniqueIndex;not null"`
	CurrentBalance decimal.Decimal `gorm:"column:current_balance;type:numeric;not null"`
	TotalReceived  decimal.Decimal `gorm:"column:total_received;type:numeric;not null"`
	TotalSpent     decimal.Decimal `gorm:"column:total_spent;type:numeric;not null"`
	LastUpdated    time.Time       `gorm:"column:last_updated"`
	UpdatedBy      *int64          `gorm:"column:updated_by"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Balance) TableName() string {
	return "balances"
}

func ValidAccountType(accountType string) bool {
	return accountType == AccountPettyCashBank || accountType == AccountPettyCashPhysical
}

// AccountForPaymentMethod maps a transaction's payment method onto the
// account it draws from: cash hits the physical float, everything else the
// bank float.
func AccountForPaymentMethod(paymentMethod string) string {
	if paymentMethod == "cash" {
		return AccountPettyCashPhysical
	}
	return AccountPettyCashBank
}
