package category

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type CategoryResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Code        string           `json:"code"`
	Description string           `json:"description"`
	BudgetLimit *decimal.Decimal `json:"budget_limit,omitempty"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

var codePattern = regexp.MustCompile(`^[A-Z0-9_]{2,20}$`)

// CreateCategoryDTO creates an expense category. Codes are stored uppercase.
type CreateCategoryDTO struct {
	Name        string           `json:"name" validate:"required"`
	Code        string           `json:"code" validate:"required"`
	Description string           `json:"description,omitempty"`
	BudgetLimit *decimal.Decimal `json:"budget_limit,omitempty"`
}

func (dto *CreateCategoryDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	dto.Code = strings.ToUpper(strings.TrimSpace(dto.Code))
	if !codePattern.MatchString(dto.Code) {
		return errors.New("code must be 2-20 uppercase letters, digits or underscores")
	}
	if dto.BudgetLimit != nil && !dto.BudgetLimit.IsPositive() {
		return errors.New("budget limit must be greater than 0")
	}
	return nil
}

type UpdateCategoryDTO struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	BudgetLimit *decimal.Decimal `json:"budget_limit,omitempty"`
}

func (dto UpdateCategoryDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.BudgetLimit != nil && !dto.BudgetLimit.IsPositive() {
		return errors.New("budget limit must be greater than 0")
	}
	return nil
}
