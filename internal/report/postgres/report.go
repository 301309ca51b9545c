package postgres

import (
	"time"

	"gorm.io/gorm"

	auditDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/audit"
	categoryDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/category"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
	"github.com/Poorani-S/pettycash-backend/internal/report"
)

// ReportRepository implements report.Repository using GORM. All queries are
// read-only.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) ListTransactions(filters report.Filters) ([]*transactionDatamodel.Transaction, error) {
	query := r.db.Model(&transactionDatamodel.Transaction{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.CategoryID > 0 {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.DateFrom != nil {
		query = query.Where("transaction_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("transaction_date <= ?", *filters.DateTo)
	}

	var txns []*transactionDatamodel.Transaction
	err := query.Order("transaction_date ASC, id ASC").Find(&txns).Error
	return txns, err
}

func (r *ReportRepository) CategoryNames() (map[int64]string, error) {
	var categories []*categoryDatamodel.ExpenseCategory
	if err := r.db.Find(&categories).Error; err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (r *ReportRepository) ListLoginActivity(from, to *time.Time, limit int) ([]*auditDatamodel.LoginActivity, error) {
	query := r.db.Model(&auditDatamodel.LoginActivity{})
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var rows []*auditDatamodel.LoginActivity
	err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
