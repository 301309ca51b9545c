package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Poorani-S/pettycash-backend/internal"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
	"github.com/Poorani-S/pettycash-backend/internal/transaction"
)

const numberRetries = 3

// TransactionRepository implements transaction.Repository using GORM.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create persists a new transaction, generating its date-sequenced number.
// A concurrent create can race on the sequence; the unique index catches the
// collision and the insert is retried with a fresh number.
func (r *TransactionRepository) Create(t *transactionDatamodel.Transaction) error {
	var lastErr error
	for i := 0; i < numberRetries; i++ {
		number, err := r.nextTransactionNumber(t.TransactionDate)
		if err != nil {
			return err
		}
		t.TransactionNumber = number

		err = r.db.Create(t).Error
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (r *TransactionRepository) nextTransactionNumber(date time.Time) (string, error) {
	prefix := fmt.Sprintf("TXN-%s-", date.Format("20060102"))

	var last string
	err := r.db.Model(&transactionDatamodel.Transaction{}).
		Where("transaction_number LIKE ?", prefix+"%").
		Order("transaction_number DESC").
		Limit(1).
		Pluck("transaction_number", &last).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		fmt.Sscanf(strings.TrimPrefix(last, prefix), "%d", &seq)
		seq++
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (r *TransactionRepository) GetByID(id int64) (*transactionDatamodel.Transaction, error) {
	var t transactionDatamodel.Transaction
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) List(filters transaction.ListFilters) ([]*transactionDatamodel.Transaction, error) {
	var items []*transactionDatamodel.Transaction
	err := r.applyFilters(filters).
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&items).Error
	return items, err
}

func (r *TransactionRepository) Count(filters transaction.ListFilters) (int64, error) {
	var count int64
	err := r.applyFilters(filters).Count(&count).Error
	return count, err
}

func (r *TransactionRepository) applyFilters(filters transaction.ListFilters) *gorm.DB {
	query := r.db.Model(&transactionDatamodel.Transaction{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.CategoryID > 0 {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.SubmittedBy > 0 {
		query = query.Where("submitted_by = ?", filters.SubmittedBy)
	}
	if filters.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filters.PaymentMethod)
	}
	if filters.DateFrom != nil {
		query = query.Where("transaction_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("transaction_date <= ?", *filters.DateTo)
	}
	return query
}

func (r *TransactionRepository) Update(t *transactionDatamodel.Transaction) error {
	t.UpdatedAt = time.Now()
	return r.db.Save(t).Error
}

// TransitionStatus moves the transaction between statuses behind a guard on
// the current status; a stale caller matches no row.
func (r *TransactionRepository) TransitionStatus(id int64, from []string, to string, updates map[string]interface{}) error {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range updates {
		values[k] = v
	}

	res := r.db.Model(&transactionDatamodel.Transaction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrInvalidStatus
	}
	return nil
}

// ApproveAndDeduct marks the transaction approved and debits the ledger
// account inside one database transaction. Either both writes commit or
// neither does, so a refused debit can never leave an approved transaction
// behind.
func (r *TransactionRepository) ApproveAndDeduct(id int64, from []string, approverID int64, accountType string, amount decimal.Decimal, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&transactionDatamodel.Transaction{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(map[string]interface{}{
				"status":      transactionDatamodel.StatusApproved,
				"approved_by": approverID,
				"approved_at": at,
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrInvalidStatus
		}

		debit := tx.Model(&balanceDatamodel.Balance{}).
			Where("account_type = ? AND current_balance >= ?", accountType, amount).
			Updates(map[string]interface{}{
				"current_balance": gorm.Expr("current_balance - ?", amount),
				"total_spent":     gorm.Expr("total_spent + ?", amount),
				"last_updated":    at,
				"updated_by":      approverID,
				"updated_at":      time.Now(),
			})
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&balanceDatamodel.Balance{}).
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
	})
}

func (r *TransactionRepository) Delete(id int64) error {
	res := r.db.Delete(&transactionDatamodel.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrTransactionNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint")
}
