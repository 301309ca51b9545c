package client

import (
	"errors"
	"regexp"
	"strings"

	clientDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/client"
)

var (
	gstPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

type ClientsResponse struct {
	Clients []Client `json:"clients"`
	Count   int      `json:"count"`
}

// CreateClientDTO registers a payee. GST numbers are stored uppercase and
// must match the GSTIN format when given.
type CreateClientDTO struct {
	Name        string      `json:"name" validate:"required"`
	GSTNumber   string      `json:"gst_number,omitempty"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Address     string      `json:"address,omitempty"`
	SupplyType  string      `json:"supply_type,omitempty"`
	Category    string      `json:"category,omitempty"`
	BankDetails BankDetails `json:"bank_details,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

func (dto *CreateClientDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 100 {
		return errors.New("name cannot be more than 100 characters")
	}

	dto.GSTNumber = strings.ToUpper(strings.TrimSpace(dto.GSTNumber))
	if dto.GSTNumber != "" && !gstPattern.MatchString(dto.GSTNumber) {
		return errors.New("gst_number is not a valid GSTIN")
	}

	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if dto.Email != "" && !emailPattern.MatchString(dto.Email) {
		return errors.New("email is not valid")
	}

	if dto.Category == "" {
		dto.Category = clientDatamodel.CategoryVendor
	}
	if !clientDatamodel.ValidCategory(dto.Category) {
		return errors.New("category must be one of vendor, supplier, contractor, service_provider, other")
	}

	if len(dto.SupplyType) > 200 {
		return errors.New("supply_type cannot be more than 200 characters")
	}

	dto.BankDetails.IFSCCode = strings.ToUpper(strings.TrimSpace(dto.BankDetails.IFSCCode))
	return nil
}

type UpdateClientDTO struct {
	Name        *string      `json:"name,omitempty"`
	GSTNumber   *string      `json:"gst_number,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Address     *string      `json:"address,omitempty"`
	SupplyType  *string      `json:"supply_type,omitempty"`
	Category    *string      `json:"category,omitempty"`
	BankDetails *BankDetails `json:"bank_details,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
}

func (dto *UpdateClientDTO) Validate() error {
	if dto.Name != nil {
		*dto.Name = strings.TrimSpace(*dto.Name)
		if *dto.Name == "" {
			return errors.New("name cannot be empty")
		}
		if len(*dto.Name) > 100 {
			return errors.New("name cannot be more than 100 characters")
		}
	}
	if dto.GSTNumber != nil && *dto.GSTNumber != "" {
		*dto.GSTNumber = strings.ToUpper(strings.TrimSpace(*dto.GSTNumber))
		if !gstPattern.MatchString(*dto.GSTNumber) {
			return errors.New("gst_number is not a valid GSTIN")
		}
	}
	if dto.Email != nil && *dto.Email != "" {
		*dto.Email = strings.ToLower(strings.TrimSpace(*dto.Email))
		if !emailPattern.MatchString(*dto.Email) {
			return errors.New("email is not valid")
		}
	}
	if dto.Category != nil && !clientDatamodel.ValidCategory(*dto.Category) {
		return errors.New("category must be one of vendor, supplier, contractor, service_provider, other")
	}
	if dto.BankDetails != nil {
		dto.BankDetails.IFSCCode = strings.ToUpper(strings.TrimSpace(dto.BankDetails.IFSCCode))
	}
	return nil
}

// ListFilters narrows the client listing. Search matches name or GST number
// case-insensitively.
type ListFilters struct {
	Search   string
	Category string
	IsActive *bool
}
