package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/Poorani-S/pettycash-backend/internal"
	fundtransferDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/fundtransfer"
)

// FundTransferRepository implements fundtransfer.Repository using GORM.
type FundTransferRepository struct {
	db *gorm.DB
}

func NewFundTransferRepository(db *gorm.DB) *FundTransferRepository {
	return &FundTransferRepository{db: db}
}

func (r *FundTransferRepository) Create(transfer *fundtransferDatamodel.FundTransfer) error {
	return r.db.Create(transfer).Error
}

func (r *FundTransferRepository) GetByID(id int64) (*fundtransferDatamodel.FundTransfer, error) {
	var transfer fundtransferDatamodel.FundTransfer
	err := r.db.Where("id = ? AND status <> ?", id, fundtransferDatamodel.StatusDeleted).
		First(&transfer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTransferNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

func (r *FundTransferRepository) List(limit, offset int) ([]*fundtransferDatamodel.FundTransfer, error) {
	var transfers []*fundtransferDatamodel.FundTransfer
	err := r.db.Where("status <> ?", fundtransferDatamodel.StatusDeleted).
		Order("transfer_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	return transfers, err
}

func (r *FundTransferRepository) MarkDeleted(id int64) error {
	res := r.db.Model(&fundtransferDatamodel.FundTransfer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     fundtransferDatamodel.StatusDeleted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrTransferNotFound
	}
	return nil
}
