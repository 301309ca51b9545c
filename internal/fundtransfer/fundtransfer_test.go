package fundtransfer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	balanceDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/balance"
	fundtransferDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/fundtransfer"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
	"github.com/Poorani-S/pettycash-backend/internal/fundtransfer"
	"github.com/Poorani-S/pettycash-backend/pkg/logger"
)

func TestFundTransfer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FundTransfer Suite")
}

type mockRepository struct {
	transfers map[int64]*fundtransferDatamodel.FundTransfer
	nextID    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{transfers: map[int64]*fundtransferDatamodel.FundTransfer{}, nextID: 1}
}

func (m *mockRepository) Create(transfer *fundtransferDatamodel.FundTransfer) error {
	transfer.ID = m.nextID
	m.nextID++
	transfer.CreatedAt = time.Now()
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *mockRepository) GetByID(id int64) (*fundtransferDatamodel.FundTransfer, error) {
	transfer, ok := m.transfers[id]
	if !ok || transfer.Status == fundtransferDatamodel.StatusDeleted {
		return nil, internal.ErrTransferNotFound
	}
	return transfer, nil
}

func (m *mockRepository) List(limit, offset int) ([]*fundtransferDatamodel.FundTransfer, error) {
	out := make([]*fundtransferDatamodel.FundTransfer, 0, len(m.transfers))
	for _, transfer := range m.transfers {
		if transfer.Status != fundtransferDatamodel.StatusDeleted {
			out = append(out, transfer)
		}
	}
	return out, nil
}

func (m *mockRepository) MarkDeleted(id int64) error {
	transfer, ok := m.transfers[id]
	if !ok {
		return internal.ErrTransferNotFound
	}
	transfer.Status = fundtransferDatamodel.StatusDeleted
	return nil
}

type mockLedger struct {
	credits  []string
	failWith error
}

func (m *mockLedger) AddFunds(ctx context.Context, accountType string, amount decimal.Decimal, actingUserID int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.credits = append(m.credits, accountType)
	return nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

var _ = Describe("Service", func() {
	var (
		repo    *mockRepository
		led     *mockLedger
		bus     *recordingBus
		service *fundtransfer.Service
		ctx     context.Context

		admin    *auth.Principal
		manager  *auth.Principal
		employee *auth.Principal
	)

	BeforeEach(func() {
		repo = newMockRepository()
		led = &mockLedger{}
		bus = &recordingBus{}
		log := logger.LoggerWrapper()
		service = fundtransfer.NewService(repo, led, approval.NewPolicy(log), bus, log)
		ctx = context.Background()

		admin = &auth.Principal{ID: 1, Role: userDatamodel.RoleAdmin}
		manager = &auth.Principal{ID: 2, Role: userDatamodel.RoleManager}
		employee = &auth.Principal{ID: 4, Role: userDatamodel.RoleEmployee}
	})

	Describe("Create", func() {
		validDTO := func() fundtransfer.CreateFundTransferDTO {
			return fundtransfer.CreateFundTransferDTO{
				TransferType: fundtransferDatamodel.TypeBank,
				Amount:       decimal.NewFromInt(5000),
				Notes:        "monthly float top-up",
			}
		}

		It("should record a bank transfer and credit the bank float", func() {
			transfer, err := service.Create(ctx, admin, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(transfer.ID).To(Equal(int64(1)))
			Expect(transfer.Status).To(Equal(fundtransferDatamodel.StatusCompleted))
			Expect(transfer.InitiatedBy).To(Equal(int64(1)))
			Expect(led.credits).To(ConsistOf(balanceDatamodel.AccountPettyCashBank))
		})

		It("should credit the physical float for a cash top-up", func() {
			dto := validDTO()
			dto.TransferType = fundtransferDatamodel.TypeCash

			_, err := service.Create(ctx, manager, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(led.credits).To(ConsistOf(balanceDatamodel.AccountPettyCashPhysical))
		})

		It("should publish a funds transferred event", func() {
			_, err := service.Create(ctx, admin, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.EventTypeFundsTransferred))
		})

		It("should default a zero transfer date to now", func() {
			transfer, err := service.Create(ctx, admin, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(transfer.TransferDate).To(BeTemporally("~", time.Now(), time.Second))
		})

		It("should refuse an employee", func() {
			_, err := service.Create(ctx, employee, validDTO())
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
			Expect(led.credits).To(BeEmpty())
		})

		It("should reject an unknown transfer type", func() {
			dto := validDTO()
			dto.TransferType = "cheque"

			_, err := service.Create(ctx, admin, dto)
			Expect(err).To(HaveOccurred())
			Expect(led.credits).To(BeEmpty())
		})

		It("should reject a non-positive amount", func() {
			dto := validDTO()
			dto.Amount = decimal.Zero

			_, err := service.Create(ctx, admin, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should void the transfer when the ledger credit fails", func() {
			led.failWith = errors.New("database gone")

			_, err := service.Create(ctx, admin, validDTO())
			Expect(err).To(HaveOccurred())

			_, getErr := repo.GetByID(1)
			Expect(getErr).To(Equal(internal.ErrTransferNotFound))
			Expect(bus.published).To(BeEmpty())
		})
	})

	Describe("Delete", func() {
		var transferID int64

		BeforeEach(func() {
			transfer, err := service.Create(ctx, admin, fundtransfer.CreateFundTransferDTO{
				TransferType: fundtransferDatamodel.TypeBank,
				Amount:       decimal.NewFromInt(5000),
			})
			Expect(err).NotTo(HaveOccurred())
			transferID = transfer.ID
			led.credits = nil
		})

		It("should soft-delete without reversing the ledger credit", func() {
			err := service.Delete(ctx, admin, transferID)
			Expect(err).NotTo(HaveOccurred())

			_, getErr := repo.GetByID(transferID)
			Expect(getErr).To(Equal(internal.ErrTransferNotFound))
			Expect(led.credits).To(BeEmpty())
		})

		It("should refuse non-admins, manager included", func() {
			err := service.Delete(ctx, manager, transferID)
			Expect(err).To(HaveOccurred())

			transfer, getErr := repo.GetByID(transferID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(transfer.Status).To(Equal(fundtransferDatamodel.StatusCompleted))
		})

		It("should return not found for a missing transfer", func() {
			err := service.Delete(ctx, admin, 999)
			Expect(err).To(Equal(internal.ErrTransferNotFound))
		})
	})

	Describe("List", func() {
		It("should exclude deleted transfers", func() {
			first, err := service.Create(ctx, admin, fundtransfer.CreateFundTransferDTO{
				TransferType: fundtransferDatamodel.TypeBank,
				Amount:       decimal.NewFromInt(1000),
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, admin, fundtransfer.CreateFundTransferDTO{
				TransferType: fundtransferDatamodel.TypeCash,
				Amount:       decimal.NewFromInt(2000),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, admin, first.ID)).To(Succeed())

			transfers, err := service.List(ctx, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(transfers).To(HaveLen(1))
		})
	})
})
