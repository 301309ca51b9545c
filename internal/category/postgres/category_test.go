package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Poorani-S/pettycash-backend/internal/category"
	categoryPostgres "github.com/Poorani-S/pettycash-backend/internal/category/postgres"
	categoryDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/category"
)

func TestCategoryPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Postgres Suite")
}

// SQLiteCategory is a SQLite-compatible model for testing
type SQLiteCategory struct {
	ID          int64            `gorm:"primaryKey"`
	Name        string           `gorm:"column:name;uniqueIndex;not null"`
	Code        string           `gorm:"column:code;uniqueIndex;not null"`
	Description string           `gorm:"column:description"`
	BudgetLimit *decimal.Decimal `gorm:"column:budget_limit"`
	IsActive    bool             `gorm:"column:is_active;default:true"`
	CreatedBy   *int64           `gorm:"column:created_by"`
	CreatedAt   time.Time        `gorm:"column:created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at"`
}

func (SQLiteCategory) TableName() string {
	return "expense_categories"
}

var _ = Describe("Category PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo category.RepositoryAPI
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteCategory{})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should create a new category successfully", func() {
			cat := &categoryDatamodel.ExpenseCategory{
				Name:        "Office Supplies",
				Code:        "OFFICE_SUPPLIES",
				Description: "Stationery and consumables",
				IsActive:    true,
			}

			err := repo.Create(cat)
			Expect(err).NotTo(HaveOccurred())
			Expect(cat.ID).To(BeNumerically(">", 0))
			Expect(cat.CreatedAt).NotTo(BeZero())
		})

		It("should fail to create a duplicate name", func() {
			first := &categoryDatamodel.ExpenseCategory{Name: "Travel", Code: "TRAVEL", IsActive: true}
			Expect(repo.Create(first)).To(Succeed())

			dup := &categoryDatamodel.ExpenseCategory{Name: "Travel", Code: "TRAVEL_2", IsActive: true}
			Expect(repo.Create(dup)).To(HaveOccurred())
		})

		It("should fail to create a duplicate code", func() {
			first := &categoryDatamodel.ExpenseCategory{Name: "Travel", Code: "TRAVEL", IsActive: true}
			Expect(repo.Create(first)).To(Succeed())

			dup := &categoryDatamodel.ExpenseCategory{Name: "Business Travel", Code: "TRAVEL", IsActive: true}
			Expect(repo.Create(dup)).To(HaveOccurred())
		})

		It("should persist a budget limit", func() {
			budget := decimal.NewFromInt(25000)
			cat := &categoryDatamodel.ExpenseCategory{
				Name:        "Travel",
				Code:        "TRAVEL",
				BudgetLimit: &budget,
				IsActive:    true,
			}
			Expect(repo.Create(cat)).To(Succeed())

			got, err := repo.GetByID(cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.BudgetLimit).NotTo(BeNil())
			Expect(got.BudgetLimit.Equal(decimal.NewFromInt(25000))).To(BeTrue())
		})
	})

	Describe("GetAll", func() {
		BeforeEach(func() {
			for _, cat := range []*categoryDatamodel.ExpenseCategory{
				{Name: "Travel", Code: "TRAVEL", IsActive: true},
				{Name: "Office Supplies", Code: "OFFICE_SUPPLIES", IsActive: true},
			} {
				Expect(repo.Create(cat)).To(Succeed())
			}

			inactive := &categoryDatamodel.ExpenseCategory{Name: "Repairs", Code: "REPAIRS", IsActive: true}
			Expect(repo.Create(inactive)).To(Succeed())
			Expect(repo.Deactivate(inactive.ID)).To(Succeed())
		})

		It("should retrieve all categories ordered by name", func() {
			categories, err := repo.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(categories).To(HaveLen(3))
			Expect(categories[0].Name).To(Equal("Office Supplies"))
			Expect(categories[1].Name).To(Equal("Repairs"))
			Expect(categories[2].Name).To(Equal("Travel"))
		})

		It("should include both active and inactive categories", func() {
			categories, err := repo.GetAll()
			Expect(err).NotTo(HaveOccurred())

			activeCount := 0
			for _, cat := range categories {
				if cat.IsActive {
					activeCount++
				}
			}
			Expect(activeCount).To(Equal(2))
		})
	})

	Describe("GetByName and GetByCode", func() {
		BeforeEach(func() {
			cat := &categoryDatamodel.ExpenseCategory{
				Name:        "Refreshments",
				Code:        "REFRESHMENTS",
				Description: "Pantry and guest refreshments",
				IsActive:    true,
			}
			Expect(repo.Create(cat)).To(Succeed())
		})

		It("should retrieve a category by name", func() {
			got, err := repo.GetByName("Refreshments")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.Code).To(Equal("REFRESHMENTS"))
		})

		It("should retrieve a category by code", func() {
			got, err := repo.GetByCode("REFRESHMENTS")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.Name).To(Equal("Refreshments"))
		})

		It("should return nil for a non-existent name", func() {
			got, err := repo.GetByName("nonexistent")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should be case sensitive", func() {
			got, err := repo.GetByName("REFRESHMENTS")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})
	})

	Describe("Update", func() {
		var cat *categoryDatamodel.ExpenseCategory

		BeforeEach(func() {
			cat = &categoryDatamodel.ExpenseCategory{
				Name:        "Repairs",
				Code:        "REPAIRS",
				Description: "Maintenance and repairs",
				IsActive:    true,
			}
			Expect(repo.Create(cat)).To(Succeed())
		})

		It("should update fields in place", func() {
			cat.Description = "Equipment repairs only"
			cat.IsActive = false

			Expect(repo.Update(cat)).To(Succeed())

			got, err := repo.GetByID(cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Description).To(Equal("Equipment repairs only"))
			Expect(got.IsActive).To(BeFalse())
		})

		It("should bump the updated_at timestamp", func() {
			originalUpdatedAt := cat.UpdatedAt
			time.Sleep(10 * time.Millisecond)

			cat.Description = "New description"
			Expect(repo.Update(cat)).To(Succeed())

			got, err := repo.GetByID(cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.UpdatedAt).To(BeTemporally(">", originalUpdatedAt))
		})
	})

	Describe("Deactivate", func() {
		It("should soft delete by clearing is_active", func() {
			cat := &categoryDatamodel.ExpenseCategory{Name: "Travel", Code: "TRAVEL", IsActive: true}
			Expect(repo.Create(cat)).To(Succeed())

			Expect(repo.Deactivate(cat.ID)).To(Succeed())

			got, err := repo.GetByID(cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.IsActive).To(BeFalse())
		})

		It("should handle a non-existent ID gracefully", func() {
			Expect(repo.Deactivate(999)).To(Succeed())
		})
	})
})
