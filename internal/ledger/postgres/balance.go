package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Poorani-S/pettycash-backend/internal"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
)

// BalanceRepository implements ledger.Repository using GORM.
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) GetByAccountType(accountType string) (*balanceDatamodel.Balance, error) {
	var balance balanceDatamodel.Balance
	err := r.db.Where("account_type = ?", accountType).First(&balance).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrBalanceNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *BalanceRepository) GetAll() ([]*balanceDatamodel.Balance, error) {
	var balances []*balanceDatamodel.Balance
	err := r.db.Order("account_type ASC").Find(&balances).Error
	return balances, err
}

// Credit increments the running balance and the lifetime received total in a
// single server-side update.
func (r *BalanceRepository) Credit(accountType string, amount decimal.Decimal, updatedBy int64, at time.Time) error {
	res := r.db.Model(&balanceDatamodel.Balance{}).
		Where("account_type = ?", accountType).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance + ?", amount),
			"total_received":  gorm.Expr("total_received + ?", amount),
			"last_updated":    at,
			"updated_by":      updatedBy,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrBalanceNotFound
	}
	return nil
}

// Debit decrements the balance behind a floor guard. When the guarded update
// matches no row, the account either does not exist or cannot cover the
// amount; a follow-up existence check tells the two apart.
func (r *BalanceRepository) Debit(accountType string, amount decimal.Decimal, updatedBy int64, at time.Time) error {
	res := r.db.Model(&balanceDatamodel.Balance{}).
		Where("account_type = ? AND current_balance >= ?", accountType, amount).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance - ?", amount),
			"total_spent":     gorm.Expr("total_spent + ?", amount),
			"last_updated":    at,
			"updated_by":      updatedBy,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&balanceDatamodel.Balance{}).
			Where("account_type = ?", accountType).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return internal.ErrBalanceNotFound
		}
		return internal.ErrInsufficientBalance
	}
	return nil
}

// SumCommittedOutflow totals the effective amount of transactions that have
// been committed but not yet settled against this account. Cash spend draws
// on the physical float, every other payment method on the bank float.
func (r *BalanceRepository) SumCommittedOutflow(accountType string) (decimal.Decimal, error) {
	committedStatuses := []string{
		transactionDatamodel.StatusPending,
		transactionDatamodel.StatusPendingApproval,
		transactionDatamodel.StatusInfoRequested,
	}

	query := r.db.Model(&transactionDatamodel.Transaction{}).
		Where("status IN ?", committedStatuses)

	if accountType == balanceDatamodel.AccountPettyCashPhysical {
		query = query.Where("payment_method = ?", transactionDatamodel.PaymentMethodCash)
	} else {
		query = query.Where("payment_method <> ?", transactionDatamodel.PaymentMethodCash)
	}

	var total decimal.NullDecimal
	err := query.
		Select("SUM(COALESCE(post_tax_amount, amount))").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
