package category

import (
	"log/slog"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	categoryDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll() ([]*categoryDatamodel.ExpenseCategory, error)
	GetByID(id int64) (*categoryDatamodel.ExpenseCategory, error)
	GetByName(name string) (*categoryDatamodel.ExpenseCategory, error)
	GetByCode(code string) (*categoryDatamodel.ExpenseCategory, error)
	Create(category *categoryDatamodel.ExpenseCategory) error
	Update(category *categoryDatamodel.ExpenseCategory) error
	Deactivate(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	policy *approval.Policy
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, policy *approval.Policy, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

// GetAllCategories returns the active categories for selection lists.
func (s *Service) GetAllCategories() ([]CategoryResponse, error) {
	dataCategories, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	var responses []CategoryResponse
	for _, dataCategory := range dataCategories {
		domainCategory := FromDataModel(dataCategory)
		if domainCategory.IsActiveCategory() {
			responses = append(responses, domainCategory.ToResponse())
		}
	}

	return responses, nil
}

func (s *Service) GetByID(id int64) (*Category, error) {
	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dataCategory == nil {
		return nil, internal.ErrCategoryNotFound
	}
	return FromDataModel(dataCategory), nil
}

// IsValidCategory reports whether an active category with the given ID
// exists. Used by transaction creation.
func (s *Service) IsValidCategory(id int64) bool {
	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Warn("error checking category validity", "category_id", id, "error", err)
		return false
	}
	return dataCategory != nil && dataCategory.IsActive
}

// Create adds a category. Admin or manager only; name and code must both be
// unique.
func (s *Service) Create(principal *auth.Principal, dto CreateCategoryDTO) (*Category, error) {
	if !s.policy.CanManageUsers(principal) {
		return nil, internal.NewForbiddenError("only administrators and managers can manage categories", internal.ErrCodeNotOwner)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidCategory)
	}

	if existing, err := s.repo.GetByName(dto.Name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, internal.NewValidationError("a category with this name already exists", internal.ErrCodeDuplicateResource)
	}
	if existing, err := s.repo.GetByCode(dto.Code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, internal.NewValidationError("a category with this code already exists", internal.ErrCodeDuplicateResource)
	}

	dataCategory := &categoryDatamodel.ExpenseCategory{
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
		BudgetLimit: dto.BudgetLimit,
		IsActive:    true,
		CreatedBy:   &principal.ID,
	}
	if err := s.repo.Create(dataCategory); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("category created", "category_id", dataCategory.ID, "code", dataCategory.Code, "by", principal.ID)
	return FromDataModel(dataCategory), nil
}

// Update edits name, description or budget limit. The code is immutable; it
// appears in exported reports and must stay stable.
func (s *Service) Update(principal *auth.Principal, id int64, dto UpdateCategoryDTO) (*Category, error) {
	if !s.policy.CanManageUsers(principal) {
		return nil, internal.NewForbiddenError("only administrators and managers can manage categories", internal.ErrCodeNotOwner)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidCategory)
	}

	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dataCategory == nil {
		return nil, internal.ErrCategoryNotFound
	}

	if dto.Name != nil && *dto.Name != dataCategory.Name {
		if existing, err := s.repo.GetByName(*dto.Name); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, internal.NewValidationError("a category with this name already exists", internal.ErrCodeDuplicateResource)
		}
		dataCategory.Name = *dto.Name
	}
	if dto.Description != nil {
		dataCategory.Description = *dto.Description
	}
	if dto.BudgetLimit != nil {
		dataCategory.BudgetLimit = dto.BudgetLimit
	}

	if err := s.repo.Update(dataCategory); err != nil {
		return nil, err
	}
	return FromDataModel(dataCategory), nil
}

// Deactivate soft-disables a category. Existing transactions keep their
// reference.
func (s *Service) Deactivate(principal *auth.Principal, id int64) error {
	if !s.policy.CanManageUsers(principal) {
		return internal.NewForbiddenError("only administrators and managers can manage categories", internal.ErrCodeNotOwner)
	}

	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if dataCategory == nil {
		return internal.ErrCategoryNotFound
	}

	return s.repo.Deactivate(id)
}
