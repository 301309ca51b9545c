package ledger_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	"github.com/Poorani-S/pettycash-backend/internal/ledger"
	"github.com/Poorani-S/pettycash-backend/pkg/logger"
)

func TestLedger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ledger Suite")
}

type mockRepository struct {
	accounts  map[string]*balanceDatamodel.Balance
	committed map[string]decimal.Decimal
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts: map[string]*balanceDatamodel.Balance{
			balanceDatamodel.AccountPettyCashBank: {
				ID:             1,
				AccountType:    balanceDatamodel.AccountPettyCashBank,
				CurrentBalance: decimal.NewFromInt(10000),
				TotalReceived:  decimal.NewFromInt(10000),
			},
			balanceDatamodel.AccountPettyCashPhysical: {
				ID:             2,
				AccountType:    balanceDatamodel.AccountPettyCashPhysical,
				CurrentBalance: decimal.Zero,
				TotalReceived:  decimal.Zero,
			},
		},
		committed: map[string]decimal.Decimal{},
	}
}

func (m *mockRepository) GetByAccountType(accountType string) (*balanceDatamodel.Balance, error) {
	acct, ok := m.accounts[accountType]
	if !ok {
		return nil, internal.ErrBalanceNotFound
	}
	return acct, nil
}

func (m *mockRepository) GetAll() ([]*balanceDatamodel.Balance, error) {
	out := make([]*balanceDatamodel.Balance, 0, len(m.accounts))
	for _, acct := range m.accounts {
		out = append(out, acct)
	}
	return out, nil
}

func (m *mockRepository) Credit(accountType string, amount decimal.Decimal, updatedBy int64, at time.Time) error {
	acct, ok := m.accounts[accountType]
	if !ok {
		return internal.ErrBalanceNotFound
	}
	acct.CurrentBalance = acct.CurrentBalance.Add(amount)
	acct.TotalReceived = acct.TotalReceived.Add(amount)
	acct.LastUpdated = at
	acct.UpdatedBy = &updatedBy
	return nil
}

func (m *mockRepository) Debit(accountType string, amount decimal.Decimal, updatedBy int64, at time.Time) error {
	acct, ok := m.accounts[accountType]
	if !ok {
		return internal.ErrBalanceNotFound
	}
	if acct.CurrentBalance.LessThan(amount) {
		return internal.ErrInsufficientBalance
	}
	acct.CurrentBalance = acct.CurrentBalance.Sub(amount)
	acct.TotalSpent = acct.TotalSpent.Add(amount)
	acct.LastUpdated = at
	acct.UpdatedBy = &updatedBy
	return nil
}

func (m *mockRepository) SumCommittedOutflow(accountType string) (decimal.Decimal, error) {
	if sum, ok := m.committed[accountType]; ok {
		return sum, nil
	}
	return decimal.Zero, nil
}

var _ = Describe("Service", func() {
	var (
		repo    *mockRepository
		service *ledger.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockRepository()
		service = ledger.NewService(repo, logger.LoggerWrapper())
		ctx = context.Background()
	})

	Describe("AddFunds", func() {
		It("should credit balance and lifetime received", func() {
			err := service.AddFunds(ctx, balanceDatamodel.AccountPettyCashBank, decimal.NewFromInt(500), 1)
			Expect(err).NotTo(HaveOccurred())

			acct := repo.accounts[balanceDatamodel.AccountPettyCashBank]
			Expect(acct.CurrentBalance).To(Equal(decimal.NewFromInt(10500)))
			Expect(acct.TotalReceived).To(Equal(decimal.NewFromInt(10500)))
			Expect(acct.UpdatedBy).To(HaveValue(Equal(int64(1))))
		})

		It("should reject an unknown account type", func() {
			err := service.AddFunds(ctx, "slush_fund", decimal.NewFromInt(500), 1)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("should reject a zero amount", func() {
			err := service.AddFunds(ctx, balanceDatamodel.AccountPettyCashBank, decimal.Zero, 1)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAmount))
		})

		It("should reject a negative amount", func() {
			err := service.AddFunds(ctx, balanceDatamodel.AccountPettyCashBank, decimal.NewFromInt(-10), 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeductFunds", func() {
		It("should debit balance and lifetime spent", func() {
			err := service.DeductFunds(ctx, balanceDatamodel.AccountPettyCashBank, decimal.NewFromInt(400), 2)
			Expect(err).NotTo(HaveOccurred())

			acct := repo.accounts[balanceDatamodel.AccountPettyCashBank]
			Expect(acct.CurrentBalance).To(Equal(decimal.NewFromInt(9600)))
			Expect(acct.TotalSpent).To(Equal(decimal.NewFromInt(400)))
		})

		It("should surface the repository's balance floor", func() {
			err := service.DeductFunds(ctx, balanceDatamodel.AccountPettyCashPhysical, decimal.NewFromInt(1), 2)
			Expect(err).To(Equal(internal.ErrInsufficientBalance))

			acct := repo.accounts[balanceDatamodel.AccountPettyCashPhysical]
			Expect(acct.CurrentBalance.IsZero()).To(BeTrue())
		})

		It("should reject a non-positive amount before touching the repository", func() {
			err := service.DeductFunds(ctx, balanceDatamodel.AccountPettyCashBank, decimal.Zero, 2)
			Expect(err).To(HaveOccurred())

			acct := repo.accounts[balanceDatamodel.AccountPettyCashBank]
			Expect(acct.CurrentBalance).To(Equal(decimal.NewFromInt(10000)))
		})
	})

	Describe("GetBalance", func() {
		It("should return the stored record", func() {
			acct, err := service.GetBalance(ctx, balanceDatamodel.AccountPettyCashBank)
			Expect(err).NotTo(HaveOccurred())
			Expect(acct.CurrentBalance).To(Equal(decimal.NewFromInt(10000)))
		})

		It("should reject an unknown account type", func() {
			_, err := service.GetBalance(ctx, "savings")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CurrentAvailable", func() {
		It("should subtract committed outflow from the stored balance", func() {
			repo.committed[balanceDatamodel.AccountPettyCashBank] = decimal.NewFromInt(2500)

			available, err := service.CurrentAvailable(ctx, balanceDatamodel.AccountPettyCashBank)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).To(Equal(decimal.NewFromInt(7500)))
		})

		It("should equal the stored balance when nothing is committed", func() {
			available, err := service.CurrentAvailable(ctx, balanceDatamodel.AccountPettyCashBank)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).To(Equal(decimal.NewFromInt(10000)))
		})

		It("should go negative when commitments exceed the balance", func() {
			repo.committed[balanceDatamodel.AccountPettyCashBank] = decimal.NewFromInt(12000)

			available, err := service.CurrentAvailable(ctx, balanceDatamodel.AccountPettyCashBank)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).To(Equal(decimal.NewFromInt(-2000)))
		})
	})
})
