package client

import (
	"time"

	clientDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/client"
)

// BankDetails carries the payout account for bank-settled clients. All
// fields are optional; cash-only vendors leave the whole block empty.
type BankDetails struct {
	BankName          string `json:"bank_name,omitempty"`
	AccountNumber     string `json:"account_number,omitempty"`
	IFSCCode          string `json:"ifsc_code,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty"`
}

type Client struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	GSTNumber   *string     `json:"gst_number,omitempty"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Address     string      `json:"address,omitempty"`
	SupplyType  string      `json:"supply_type,omitempty"`
	Category    string      `json:"category"`
	BankDetails BankDetails `json:"bank_details"`
	Notes       string      `json:"notes,omitempty"`
	IsActive    bool        `json:"is_active"`
	CreatedBy   *int64      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func ToDataModel(c *Client) *clientDatamodel.Client {
	return &clientDatamodel.Client{
		ID:                c.ID,
		Name:              c.Name,
		GSTNumber:         c.GSTNumber,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           c.Address,
		SupplyType:        c.SupplyType,
		Category:          c.Category,
		BankName:          c.BankDetails.BankName,
		AccountNumber:     c.BankDetails.AccountNumber,
		IFSCCode:          c.BankDetails.IFSCCode,
		AccountHolderName: c.BankDetails.AccountHolderName,
		Notes:             c.Notes,
		IsActive:          c.IsActive,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func FromDataModel(c *clientDatamodel.Client) *Client {
	return &Client{
		ID:         c.ID,
		Name:       c.Name,
		GSTNumber:  c.GSTNumber,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		SupplyType: c.SupplyType,
		Category:   c.Category,
		BankDetails: BankDetails{
			BankName:          c.BankName,
			AccountNumber:     c.AccountNumber,
			IFSCCode:          c.IFSCCode,
			AccountHolderName: c.AccountHolderName,
		},
		Notes:     c.Notes,
		IsActive:  c.IsActive,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
