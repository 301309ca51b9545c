package category

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory struct {
	ID          int64            `gorm:"primaryKey"`
	Name        string           `gorm:"column:name;uniqueIndex;not null"`
	Code        string           `gorm:"column:code;uniqueIndex;not null"`
	Description string           `gorm:"column:description"`
	BudgetLimit *decimal.Decimal `gorm:"column:budget_limit;type:numeric"`
	IsActive    bool             `gorm:"column:is_active;default:true"`
	CreatedBy   *int64           `gorm:"column:created_by"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}
