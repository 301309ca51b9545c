package postgres

import (
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Poorani-S/pettycash-backend/internal"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
	"github.com/Poorani-S/pettycash-backend/internal/transaction"
)

func TestTransactionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TransactionRepository Suite")
}

// SQLiteTransaction is a SQLite-compatible model for testing
type SQLiteTransaction struct {
	ID                 int64            `gorm:"primaryKey"`
	TransactionNumber  string           `gorm:"column:transaction_number;uniqueIndex;not null"`
	CategoryID         int64            `gorm:"column:category_id;not null"`
	RequestedBy        int64            `gorm:"column:requested_by;not null"`
	SubmittedBy        int64            `gorm:"column:submitted_by;not null"`
	Purpose            string           `gorm:"column:purpose"`
	PayeeName          string           `gorm:"column:payee_name"`
	HasGSTInvoice      bool             `gorm:"column:has_gst_invoice;default:false"`
	PreTaxAmount       *decimal.Decimal `gorm:"column:pre_tax_amount;type:NUMERIC"`
	TaxAmount          *decimal.Decimal `gorm:"column:tax_amount;type:NUMERIC"`
	PostTaxAmount      *decimal.Decimal `gorm:"column:post_tax_amount;type:NUMERIC"`
	Amount             *decimal.Decimal `gorm:"column:amount;type:NUMERIC"`
	Status             string           `gorm:"column:status;default:pending"`
	PaymentMethod      string           `gorm:"column:payment_method"`
	TransactionDate    time.Time        `gorm:"column:transaction_date"`
	InvoicePath        *string          `gorm:"column:invoice_path"`
	PaymentProofPath   *string          `gorm:"column:payment_proof_path"`
	ApprovedBy         *int64           `gorm:"column:approved_by"`
	ApprovedAt         *time.Time       `gorm:"column:approved_at"`
	RejectedBy         *int64           `gorm:"column:rejected_by"`
	RejectedAt         *time.Time       `gorm:"column:rejected_at"`
	AdminComment       *string          `gorm:"column:admin_comment"`
	InfoRequestComment *string          `gorm:"column:info_request_comment"`
	PaidAt             *time.Time       `gorm:"column:paid_at"`
	CreatedAt          time.Time        `gorm:"column:created_at"`
	UpdatedAt          time.Time        `gorm:"column:updated_at"`
}

func (SQLiteTransaction) TableName() string {
	return "transactions"
}

type SQLiteBalanceRow struct {
	ID             int64           `gorm:"primaryKey"`
	AccountType    string          `gorm:"column:account_type;uniqueIndex;not null"`
	CurrentBalance decimal.Decimal `gorm:"column:current_balance;type:NUMERIC;not null"`
	TotalReceived  decimal.Decimal `gorm:"column:total_received;type:NUMERIC;not null"`
	TotalSpent     decimal.Decimal `gorm:"column:total_spent;type:NUMERIC;not null"`
	LastUpdated    time.Time       `gorm:"column:last_updated"`
	UpdatedBy      *int64          `gorm:"column:updated_by"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (SQLiteBalanceRow) TableName() string {
	return "balances"
}

var _ = Describe("Transaction PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo *TransactionRepository
	)

	amount := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	newTransaction := func(status string) *transactionDatamodel.Transaction {
		return &transactionDatamodel.Transaction{
			CategoryID:      1,
			RequestedBy:     4,
			SubmittedBy:     4,
			Purpose:         "Courier charges",
			PayeeName:       "Bluedart",
			PostTaxAmount:   amount("1180.00"),
			Status:          status,
			PaymentMethod:   transactionDatamodel.PaymentMethodUPI,
			TransactionDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteTransaction{}, &SQLiteBalanceRow{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewTransactionRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should assign a date-sequenced transaction number", func() {
			t := newTransaction(transactionDatamodel.StatusPending)
			err := repo.Create(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.ID).To(BeNumerically(">", 0))
			Expect(t.TransactionNumber).To(Equal("TXN-20260820-0001"))
		})

		It("should increment the sequence within a day", func() {
			for i := 1; i <= 3; i++ {
				t := newTransaction(transactionDatamodel.StatusPending)
				err := repo.Create(t)
				Expect(err).NotTo(HaveOccurred())
				Expect(t.TransactionNumber).To(Equal(fmt.Sprintf("TXN-20260820-%04d", i)))
			}
		})

		It("should restart the sequence on a new day", func() {
			first := newTransaction(transactionDatamodel.StatusPending)
			Expect(repo.Create(first)).To(Succeed())

			second := newTransaction(transactionDatamodel.StatusPending)
			second.TransactionDate = time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
			Expect(repo.Create(second)).To(Succeed())
			Expect(second.TransactionNumber).To(Equal("TXN-20260821-0001"))
		})
	})

	Describe("GetByID", func() {
		It("should retrieve a created transaction", func() {
			created := newTransaction(transactionDatamodel.StatusPending)
			Expect(repo.Create(created)).To(Succeed())

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.TransactionNumber).To(Equal(created.TransactionNumber))
			Expect(got.PostTaxAmount.Equal(decimal.RequireFromString("1180.00"))).To(BeTrue())
		})

		It("should return ErrTransactionNotFound for a missing ID", func() {
			got, err := repo.GetByID(99999)
			Expect(err).To(Equal(internal.ErrTransactionNotFound))
			Expect(got).To(BeNil())
		})
	})

	Describe("List and Count", func() {
		BeforeEach(func() {
			pending := newTransaction(transactionDatamodel.StatusPending)
			Expect(repo.Create(pending)).To(Succeed())

			approved := newTransaction(transactionDatamodel.StatusApproved)
			approved.SubmittedBy = 5
			approved.PaymentMethod = transactionDatamodel.PaymentMethodCash
			Expect(repo.Create(approved)).To(Succeed())
		})

		It("should filter by status", func() {
			items, err := repo.List(transaction.ListFilters{Status: transactionDatamodel.StatusApproved, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Status).To(Equal(transactionDatamodel.StatusApproved))
		})

		It("should filter by submitter", func() {
			count, err := repo.Count(transaction.ListFilters{SubmittedBy: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should filter by payment method", func() {
			items, err := repo.List(transaction.ListFilters{PaymentMethod: transactionDatamodel.PaymentMethodCash, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})
	})

	Describe("TransitionStatus", func() {
		var created *transactionDatamodel.Transaction

		BeforeEach(func() {
			created = newTransaction(transactionDatamodel.StatusPending)
			Expect(repo.Create(created)).To(Succeed())
		})

		It("should move between statuses when the guard matches", func() {
			err := repo.TransitionStatus(created.ID,
				[]string{transactionDatamodel.StatusPending},
				transactionDatamodel.StatusRejected,
				map[string]interface{}{"admin_comment": "no invoice attached"})
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(transactionDatamodel.StatusRejected))
			Expect(got.AdminComment).To(HaveValue(Equal("no invoice attached")))
		})

		It("should return ErrInvalidStatus when the current status is not in the guard", func() {
			err := repo.TransitionStatus(created.ID,
				[]string{transactionDatamodel.StatusApproved},
				transactionDatamodel.StatusPaid, nil)
			Expect(err).To(Equal(internal.ErrInvalidStatus))

			got, getErr := repo.GetByID(created.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(transactionDatamodel.StatusPending))
		})
	})

	Describe("ApproveAndDeduct", func() {
		var created *transactionDatamodel.Transaction

		seedBalance := func(v string) {
			err := db.Create(&SQLiteBalanceRow{
				AccountType:    balanceDatamodel.AccountPettyCashBank,
				CurrentBalance: decimal.RequireFromString(v),
				TotalReceived:  decimal.RequireFromString(v),
				TotalSpent:     decimal.Zero,
			}).Error
			Expect(err).NotTo(HaveOccurred())
		}

		currentBalance := func() decimal.Decimal {
			var acct SQLiteBalanceRow
			err := db.Where("account_type = ?", balanceDatamodel.AccountPettyCashBank).First(&acct).Error
			Expect(err).NotTo(HaveOccurred())
			return acct.CurrentBalance
		}

		BeforeEach(func() {
			created = newTransaction(transactionDatamodel.StatusPending)
			Expect(repo.Create(created)).To(Succeed())
		})

		It("should approve and debit in one step", func() {
			seedBalance("5000")

			err := repo.ApproveAndDeduct(created.ID,
				[]string{transactionDatamodel.StatusPending},
				2, balanceDatamodel.AccountPettyCashBank,
				decimal.RequireFromString("1180.00"), time.Now())
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(transactionDatamodel.StatusApproved))
			Expect(got.ApprovedBy).To(HaveValue(Equal(int64(2))))
			Expect(got.ApprovedAt).NotTo(BeNil())
			Expect(currentBalance().Equal(decimal.RequireFromString("3820.00"))).To(BeTrue())
		})

		It("should roll back the approval when the account cannot cover the amount", func() {
			seedBalance("1000")

			err := repo.ApproveAndDeduct(created.ID,
				[]string{transactionDatamodel.StatusPending},
				2, balanceDatamodel.AccountPettyCashBank,
				decimal.RequireFromString("1180.00"), time.Now())
			Expect(err).To(Equal(internal.ErrInsufficientBalance))

			got, getErr := repo.GetByID(created.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(transactionDatamodel.StatusPending))
			Expect(got.ApprovedBy).To(BeNil())
			Expect(currentBalance().Equal(decimal.NewFromInt(1000))).To(BeTrue())
		})

		It("should return ErrBalanceNotFound when the account row is missing", func() {
			err := repo.ApproveAndDeduct(created.ID,
				[]string{transactionDatamodel.StatusPending},
				2, balanceDatamodel.AccountPettyCashBank,
				decimal.NewFromInt(100), time.Now())
			Expect(err).To(Equal(internal.ErrBalanceNotFound))

			got, getErr := repo.GetByID(created.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(transactionDatamodel.StatusPending))
		})

		It("should approve exactly one of two racing approvals when only one fits", func() {
			seedBalance("2000")

			second := newTransaction(transactionDatamodel.StatusPending)
			Expect(repo.Create(second)).To(Succeed())

			sqlDB, err := db.DB()
			Expect(err).NotTo(HaveOccurred())
			sqlDB.SetMaxOpenConns(1)

			// each approval debits 1180.00; the float only covers one
			results := make(chan error, 2)
			var wg sync.WaitGroup
			for _, id := range []int64{created.ID, second.ID} {
				wg.Add(1)
				go func(id int64) {
					defer wg.Done()
					defer GinkgoRecover()
					results <- repo.ApproveAndDeduct(id,
						[]string{transactionDatamodel.StatusPending},
						2, balanceDatamodel.AccountPettyCashBank,
						decimal.RequireFromString("1180.00"), time.Now())
				}(id)
			}
			wg.Wait()
			close(results)

			var approved, refused int
			for err := range results {
				switch err {
				case nil:
					approved++
				case internal.ErrInsufficientBalance:
					refused++
				default:
					Fail("unexpected approval error: " + err.Error())
				}
			}
			Expect(approved).To(Equal(1))
			Expect(refused).To(Equal(1))
			Expect(currentBalance().Equal(decimal.RequireFromString("820.00"))).To(BeTrue())
			Expect(currentBalance().IsNegative()).To(BeFalse())

			var pending int64
			err = db.Model(&SQLiteTransaction{}).
				Where("status = ?", transactionDatamodel.StatusPending).
				Count(&pending).Error
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(Equal(int64(1)))
		})

		It("should not debit when the status guard fails", func() {
			seedBalance("5000")

			err := repo.ApproveAndDeduct(created.ID,
				[]string{transactionDatamodel.StatusApproved},
				2, balanceDatamodel.AccountPettyCashBank,
				decimal.NewFromInt(100), time.Now())
			Expect(err).To(Equal(internal.ErrInvalidStatus))
			Expect(currentBalance().Equal(decimal.NewFromInt(5000))).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should remove the row", func() {
			created := newTransaction(transactionDatamodel.StatusDraft)
			Expect(repo.Create(created)).To(Succeed())

			Expect(repo.Delete(created.ID)).To(Succeed())

			_, err := repo.GetByID(created.ID)
			Expect(err).To(Equal(internal.ErrTransactionNotFound))
		})

		It("should return ErrTransactionNotFound for a missing ID", func() {
			err := repo.Delete(99999)
			Expect(err).To(Equal(internal.ErrTransactionNotFound))
		})
	})
})
