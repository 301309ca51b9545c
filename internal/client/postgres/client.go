package postgres

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/client"
	clientDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/client"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) client.Repository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) List(filters client.ListFilters) ([]*clientDatamodel.Client, error) {
	query := r.db.Model(&clientDatamodel.Client{})

	if filters.Search != "" {
		term := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(gst_number) LIKE ?", term, term)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	var clients []*clientDatamodel.Client
	err := query.Order("name ASC").Find(&clients).Error
	return clients, err
}

func (r *ClientRepository) GetByID(id int64) (*clientDatamodel.Client, error) {
	var c clientDatamodel.Client
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) GetByGSTNumber(gstNumber string) (*clientDatamodel.Client, error) {
	var c clientDatamodel.Client
	err := r.db.Where("gst_number = ?", gstNumber).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(c *clientDatamodel.Client) error {
	return r.db.Create(c).Error
}

func (r *ClientRepository) Update(c *clientDatamodel.Client) error {
	c.UpdatedAt = time.Now()
	return r.db.Save(c).Error
}

func (r *ClientRepository) Delete(id int64) error {
	res := r.db.Delete(&clientDatamodel.Client{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrClientNotFound
	}
	return nil
}
