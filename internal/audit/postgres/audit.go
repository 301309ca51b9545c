package postgres

import (
	"gorm.io/gorm"

	"github.com/Poorani-S/pettycash-backend/internal/audit"
	auditDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/audit"
)

// AuditRepository implements audit.Repository using GORM.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateAuditLog(log *auditDatamodel.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *AuditRepository) CreateLoginActivity(activity *auditDatamodel.LoginActivity) error {
	return r.db.Create(activity).Error
}

func (r *AuditRepository) CreateUserActivityLog(log *auditDatamodel.UserActivityLog) error {
	return r.db.Create(log).Error
}

func (r *AuditRepository) ListAuditLogs(filters audit.ListFilters) ([]*auditDatamodel.AuditLog, error) {
	query := r.db.Model(&auditDatamodel.AuditLog{})
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.PerformedBy > 0 {
		query = query.Where("performed_by = ?", filters.PerformedBy)
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at <= ?", *filters.To)
	}

	var logs []*auditDatamodel.AuditLog
	err := query.Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&logs).Error
	return logs, err
}

func (r *AuditRepository) ListLoginActivity(filters audit.LoginActivityFilters) ([]*auditDatamodel.LoginActivity, error) {
	query := r.db.Model(&auditDatamodel.LoginActivity{})
	if filters.UserID > 0 {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("login_status = ?", filters.Status)
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at <= ?", *filters.To)
	}

	var activity []*auditDatamodel.LoginActivity
	err := query.Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&activity).Error
	return activity, err
}

func (r *AuditRepository) ListUserActivity(filters audit.UserActivityFilters) ([]*auditDatamodel.UserActivityLog, error) {
	query := r.db.Model(&auditDatamodel.UserActivityLog{})
	if filters.TargetUserID > 0 {
		query = query.Where("target_user_id = ?", filters.TargetUserID)
	}

	var logs []*auditDatamodel.UserActivityLog
	err := query.Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&logs).Error
	return logs, err
}
