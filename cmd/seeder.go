package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	categoryDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/category"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGormDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"otps", "transactions", "fund_transfers", "balances", "expense_categories", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		password := string(hash)

		limit := func(v string) *decimal.Decimal {
			d := decimal.RequireFromString(v)
			return &d
		}

		users := []userDatamodel.User{
			{Name: "Asha Admin", Email: "asha@pettycash.local", PasswordHash: &password, Role: userDatamodel.RoleAdmin, Department: "Finance", IsActive: true},
			{Name: "Meera Manager", Email: "meera@pettycash.local", PasswordHash: &password, Role: userDatamodel.RoleManager, ApprovalLimit: limit("50000"), Department: "Finance", IsActive: true},
			{Name: "Arjun Approver", Email: "arjun@pettycash.local", PasswordHash: &password, Role: userDatamodel.RoleApprover, ApprovalLimit: limit("10000"), Department: "Operations", IsActive: true},
			{Name: "Esha Employee", Email: "esha@pettycash.local", PasswordHash: &password, Role: userDatamodel.RoleEmployee, Department: "Operations", IsActive: true},
			{Name: "Anand Auditor", Email: "anand@pettycash.local", PasswordHash: &password, Role: userDatamodel.RoleAuditor, Department: "Compliance", IsActive: true},
		}
		for i := range users {
			var count int64
			db.Model(&userDatamodel.User{}).Where("email = ?", users[i].Email).Count(&count)
			if count > 0 {
				fmt.Println("user already exists:", users[i].Email)
				continue
			}
			if err := db.Create(&users[i]).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", users[i].Email, err)
			}
			fmt.Println("Seeded user:", users[i].Email)
		}

		categories := []categoryDatamodel.ExpenseCategory{
			{Name: "Office Supplies", Code: "OFFICE_SUPPLIES", Description: "Stationery and consumables", IsActive: true},
			{Name: "Travel", Code: "TRAVEL", Description: "Local travel and conveyance", BudgetLimit: limit("25000"), IsActive: true},
			{Name: "Refreshments", Code: "REFRESHMENTS", Description: "Pantry and guest refreshments", IsActive: true},
			{Name: "Repairs", Code: "REPAIRS", Description: "Minor repairs and maintenance", BudgetLimit: limit("15000"), IsActive: true},
		}
		for i := range categories {
			var count int64
			db.Model(&categoryDatamodel.ExpenseCategory{}).Where("code = ?", categories[i].Code).Count(&count)
			if count > 0 {
				fmt.Println("category already exists:", categories[i].Code)
				continue
			}
			if err := db.Create(&categories[i]).Error; err != nil {
				log.Fatalf("failed to seed category %s: %v", categories[i].Code, err)
			}
			fmt.Println("Seeded category:", categories[i].Name)
		}

		for _, accountType := range []string{balanceDatamodel.AccountPettyCashBank, balanceDatamodel.AccountPettyCashPhysical} {
			var count int64
			db.Model(&balanceDatamodel.Balance{}).Where("account_type = ?", accountType).Count(&count)
			if count > 0 {
				fmt.Println("balance already exists:", accountType)
				continue
			}
			bal := balanceDatamodel.Balance{
				AccountType:    accountType,
				CurrentBalance: decimal.Zero,
				TotalReceived:  decimal.Zero,
				TotalSpent:     decimal.Zero,
				LastUpdated:    time.Now(),
			}
			if err := db.Create(&bal).Error; err != nil {
				log.Fatalf("failed to seed balance %s: %v", accountType, err)
			}
			fmt.Println("Seeded balance account:", accountType)
		}

		fmt.Println("Seeding complete")
	},
}
