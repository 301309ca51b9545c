package client

import (
	"time"
)

const (
	CategoryVendor          = "vendor"
	CategorySupplier        = "supplier"
	CategoryContractor      = "contractor"
	CategoryServiceProvider = "service_provider"
	CategoryOther           = "other"
)

// Client is a registered payee: a vendor, supplier or contractor that
// expenses are paid out to.
type Client struct {
	ID                int64     `gorm:"primaryKey"`
	Name              string    `gorm:"column:name;index;not null"`
	GSTNumber         *string   `gorm:"column:gst_number;uniqueIndex"`
	Email             string    `gorm:"column:email"`
	Phone             string    `gorm:"column:phone"`
	Address           string    `gorm:"column:address"`
	SupplyType        string    `gorm:"column:supply_type"`
	Category          string    `gorm:"column:category;default:vendor"`
	BankName          string    `gorm:"column:bank_name"`
	AccountNumber     string    `gorm:"column:account_number"`
	IFSCCode          string    `gorm:"column:ifsc_code"`
	AccountHolderName string    `gorm:"column:account_holder_name"`
	Notes             string    `gorm:"column:notes"`
	IsActive          bool      `gorm:"column:is_active;default:true"`
	CreatedBy         *int64    `gorm:"column:created_by"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Client) TableName() string {
	return "clients"
}

func ValidCategory(category string) bool {
	switch category {
	case CategoryVendor, CategorySupplier, CategoryContractor, CategoryServiceProvider, CategoryOther:
		return true
	}
	return false
}
