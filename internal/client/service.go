package client

import (
	"log/slog"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	clientDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/client"
)

type Repository interface {
	List(filters ListFilters) ([]*clientDatamodel.Client, error)
	GetByID(id int64) (*clientDatamodel.Client, error)
	GetByGSTNumber(gstNumber string) (*clientDatamodel.Client, error)
	Create(client *clientDatamodel.Client) error
	Update(client *clientDatamodel.Client) error
	Delete(id int64) error
}

type Service struct {
	repo   Repository
	policy *approval.Policy
	logger *slog.Logger
}

func NewService(repo Repository, policy *approval.Policy, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

// List returns clients matching the filters, ordered by name.
func (s *Service) List(filters ListFilters) ([]Client, error) {
	records, err := s.repo.List(filters)
	if err != nil {
		s.logger.Error("failed to list clients", "error", err)
		return nil, err
	}

	clients := make([]Client, 0, len(records))
	for _, record := range records {
		clients = append(clients, *FromDataModel(record))
	}
	return clients, nil
}

func (s *Service) GetByID(id int64) (*Client, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrClientNotFound
	}
	return FromDataModel(record), nil
}

// Create registers a payee. Any writing role may add one; GST numbers must
// be unique across the registry.
func (s *Service) Create(principal *auth.Principal, dto CreateClientDTO) (*Client, error) {
	if err := s.policy.CanWrite(principal); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidClient)
	}

	var gstNumber *string
	if dto.GSTNumber != "" {
		if existing, err := s.repo.GetByGSTNumber(dto.GSTNumber); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, internal.NewValidationError("a client with this GST number already exists", internal.ErrCodeDuplicateResource)
		}
		gstNumber = &dto.GSTNumber
	}

	record := &clientDatamodel.Client{
		Name:              dto.Name,
		GSTNumber:         gstNumber,
		Email:             dto.Email,
		Phone:             dto.Phone,
		Address:           dto.Address,
		SupplyType:        dto.SupplyType,
		Category:          dto.Category,
		BankName:          dto.BankDetails.BankName,
		AccountNumber:     dto.BankDetails.AccountNumber,
		IFSCCode:          dto.BankDetails.IFSCCode,
		AccountHolderName: dto.BankDetails.AccountHolderName,
		Notes:             dto.Notes,
		IsActive:          true,
		CreatedBy:         &principal.ID,
	}
	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create client", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("client created", "client_id", record.ID, "name", record.Name, "by", principal.ID)
	return FromDataModel(record), nil
}

// Update edits client details, re-checking GST uniqueness when the number
// changes.
func (s *Service) Update(principal *auth.Principal, id int64, dto UpdateClientDTO) (*Client, error) {
	if err := s.policy.CanWrite(principal); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidClient)
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrClientNotFound
	}

	if dto.GSTNumber != nil && *dto.GSTNumber != "" {
		current := ""
		if record.GSTNumber != nil {
			current = *record.GSTNumber
		}
		if *dto.GSTNumber != current {
			if existing, err := s.repo.GetByGSTNumber(*dto.GSTNumber); err != nil {
				return nil, err
			} else if existing != nil {
				return nil, internal.NewValidationError("a client with this GST number already exists", internal.ErrCodeDuplicateResource)
			}
		}
		record.GSTNumber = dto.GSTNumber
	}

	if dto.Name != nil {
		record.Name = *dto.Name
	}
	if dto.Email != nil {
		record.Email = *dto.Email
	}
	if dto.Phone != nil {
		record.Phone = *dto.Phone
	}
	if dto.Address != nil {
		record.Address = *dto.Address
	}
	if dto.SupplyType != nil {
		record.SupplyType = *dto.SupplyType
	}
	if dto.Category != nil {
		record.Category = *dto.Category
	}
	if dto.BankDetails != nil {
		record.BankName = dto.BankDetails.BankName
		record.AccountNumber = dto.BankDetails.AccountNumber
		record.IFSCCode = dto.BankDetails.IFSCCode
		record.AccountHolderName = dto.BankDetails.AccountHolderName
	}
	if dto.Notes != nil {
		record.Notes = *dto.Notes
	}
	if dto.IsActive != nil {
		record.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(record); err != nil {
		return nil, err
	}
	return FromDataModel(record), nil
}

// Delete removes a client outright. Admin only; expenses reference payees by
// name, so nothing dangles.
func (s *Service) Delete(principal *auth.Principal, id int64) error {
	if !s.policy.IsAdmin(principal) {
		return internal.NewForbiddenError("only administrators can delete clients", internal.ErrCodeNotOwner)
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if record == nil {
		return internal.ErrClientNotFound
	}

	s.logger.Info("client deleted", "client_id", id, "name", record.Name, "by", principal.ID)
	return s.repo.Delete(id)
}
