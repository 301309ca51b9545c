package transaction_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
	"github.com/Poorani-S/pettycash-backend/internal/transaction"
)

func TestTransaction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Service Suite")
}

// mockRepository keeps transactions in memory and simulates the guarded
// transition and approve-and-deduct semantics of the real repository.
type mockRepository struct {
	nextID       int64
	transactions map[int64]*transactionDatamodel.Transaction
	balance      decimal.Decimal
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		nextID:       1,
		transactions: make(map[int64]*transactionDatamodel.Transaction),
		balance:      decimal.NewFromInt(100000),
	}
}

func (m *mockRepository) Create(t *transactionDatamodel.Transaction) error {
	t.ID = m.nextID
	t.TransactionNumber = fmt.Sprintf("TXN-20250801-%04d", m.nextID)
	t.CreatedAt = time.Now()
	m.nextID++
	copied := *t
	m.transactions[t.ID] = &copied
	return nil
}

func (m *mockRepository) GetByID(id int64) (*transactionDatamodel.Transaction, error) {
	t, ok := m.transactions[id]
	if !ok {
		return nil, internal.ErrTransactionNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockRepository) List(filters transaction.ListFilters) ([]*transactionDatamodel.Transaction, error) {
	var out []*transactionDatamodel.Transaction
	for _, t := range m.transactions {
		if filters.SubmittedBy > 0 && t.SubmittedBy != filters.SubmittedBy {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockRepository) Count(filters transaction.ListFilters) (int64, error) {
	items, _ := m.List(filters)
	return int64(len(items)), nil
}

func (m *mockRepository) Update(t *transactionDatamodel.Transaction) error {
	if _, ok := m.transactions[t.ID]; !ok {
		return internal.ErrTransactionNotFound
	}
	copied := *t
	m.transactions[t.ID] = &copied
	return nil
}

func (m *mockRepository) TransitionStatus(id int64, from []string, to string, updates map[string]interface{}) error {
	t, ok := m.transactions[id]
	if !ok {
		return internal.ErrTransactionNotFound
	}
	allowed := false
	for _, s := range from {
		if t.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return internal.ErrInvalidStatus
	}
	t.Status = to
	if comment, ok := updates["admin_comment"].(string); ok {
		t.AdminComment = &comment
	}
	if comment, ok := updates["info_request_comment"].(string); ok {
		t.InfoRequestComment = &comment
	}
	if paidAt, ok := updates["paid_at"].(time.Time); ok {
		t.PaidAt = &paidAt
	}
	return nil
}

func (m *mockRepository) ApproveAndDeduct(id int64, from []string, approverID int64, accountType string, amount decimal.Decimal, at time.Time) error {
	t, ok := m.transactions[id]
	if !ok {
		return internal.ErrTransactionNotFound
	}
	allowed := false
	for _, s := range from {
		if t.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return internal.ErrInvalidStatus
	}
	if m.balance.LessThan(amount) {
		return internal.ErrInsufficientBalance
	}
	m.balance = m.balance.Sub(amount)
	t.Status = transactionDatamodel.StatusApproved
	t.ApprovedBy = &approverID
	t.ApprovedAt = &at
	return nil
}

func (m *mockRepository) Delete(id int64) error {
	if _, ok := m.transactions[id]; !ok {
		return internal.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) eventTypes() []string {
	var types []string
	for _, e := range b.published {
		types = append(types, e.EventType())
	}
	return types
}

var _ = Describe("Transaction Service", func() {
	var (
		repo     *mockRepository
		bus      *recordingBus
		service  *transaction.Service
		ctx      context.Context
		employee *auth.Principal
		manager  *auth.Principal
		admin    *auth.Principal
	)

	limitOf := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	amountOf := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	createPending := func(p *auth.Principal, preTax string, hasGST bool) *transactionDatamodel.Transaction {
		dto := transaction.CreateTransactionDTO{
			CategoryID:      1,
			Purpose:         "team lunch",
			PayeeName:       "Hotel Saravana",
			HasGSTInvoice:   hasGST,
			PreTaxAmount:    amountOf(preTax),
			PaymentMethod:   transactionDatamodel.PaymentMethodUPI,
			TransactionDate: time.Now().Add(-24 * time.Hour),
		}
		t, err := service.Create(ctx, p, dto)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	BeforeEach(func() {
		repo = newMockRepository()
		bus = &recordingBus{}
		policy := approval.NewPolicy(slog.Default())
		service = transaction.NewService(repo, policy, bus, transaction.DefaultResubmitPolicy(), slog.Default())
		ctx = context.Background()

		employee = &auth.Principal{ID: 10, Role: userDatamodel.RoleEmployee}
		manager = &auth.Principal{ID: 20, Role: userDatamodel.RoleManager, ApprovalLimit: limitOf("2000")}
		admin = &auth.Principal{ID: 1, Role: userDatamodel.RoleAdmin}
	})

	Describe("Create", func() {
		It("should derive tax and post-tax amounts from a GST invoice", func() {
			t := createPending(employee, "1000", true)

			Expect(t.PreTaxAmount.Equal(decimal.NewFromInt(1000))).To(BeTrue())
			Expect(t.TaxAmount.Equal(decimal.NewFromInt(180))).To(BeTrue())
			Expect(t.PostTaxAmount.Equal(decimal.NewFromInt(1180))).To(BeTrue())
			Expect(t.Amount).To(BeNil())
			Expect(t.Status).To(Equal(transactionDatamodel.StatusPending))
		})

		It("should carry zero tax without a GST invoice", func() {
			t := createPending(employee, "1000", false)

			Expect(t.TaxAmount.IsZero()).To(BeTrue())
			Expect(t.PostTaxAmount.Equal(decimal.NewFromInt(1000))).To(BeTrue())
		})

		It("should store a legacy flat amount verbatim", func() {
			dto := transaction.CreateTransactionDTO{
				CategoryID:      1,
				Purpose:         "auto fare",
				Amount:          amountOf("250"),
				PaymentMethod:   transactionDatamodel.PaymentMethodCash,
				TransactionDate: time.Now().Add(-time.Hour),
			}
			t, err := service.Create(ctx, employee, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Amount.Equal(decimal.NewFromInt(250))).To(BeTrue())
			Expect(t.PostTaxAmount).To(BeNil())
		})

		It("should save as draft when requested", func() {
			dto := transaction.CreateTransactionDTO{
				CategoryID:      1,
				Purpose:         "stationery",
				Amount:          amountOf("100"),
				PaymentMethod:   transactionDatamodel.PaymentMethodCash,
				TransactionDate: time.Now().Add(-time.Hour),
				SaveAsDraft:     true,
			}
			t, err := service.Create(ctx, employee, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(transactionDatamodel.StatusDraft))
		})

		It("should reject a future transaction date", func() {
			dto := transaction.CreateTransactionDTO{
				CategoryID:      1,
				Purpose:         "time travel",
				Amount:          amountOf("100"),
				PaymentMethod:   transactionDatamodel.PaymentMethodCash,
				TransactionDate: time.Now().Add(48 * time.Hour),
			}
			_, err := service.Create(ctx, employee, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should refuse writes from auditors", func() {
			auditor := &auth.Principal{ID: 40, Role: userDatamodel.RoleAuditor}
			dto := transaction.CreateTransactionDTO{
				CategoryID:      1,
				Purpose:         "anything",
				Amount:          amountOf("100"),
				PaymentMethod:   transactionDatamodel.PaymentMethodCash,
				TransactionDate: time.Now().Add(-time.Hour),
			}
			_, err := service.Create(ctx, auditor, dto)
			Expect(err).To(Equal(internal.ErrReadOnlyRole))
		})

		It("should publish a created event", func() {
			createPending(employee, "1000", true)
			Expect(bus.eventTypes()).To(ContainElement(events.EventTypeTransactionCreated))
		})
	})

	Describe("Approve", func() {
		It("should approve within the manager's limit and debit the ledger", func() {
			t := createPending(employee, "1000", true) // post-tax 1180

			approved, err := service.Approve(ctx, manager, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(transactionDatamodel.StatusApproved))
			Expect(*approved.ApprovedBy).To(Equal(manager.ID))
			Expect(repo.balance.Equal(decimal.NewFromInt(100000 - 1180))).To(BeTrue())
		})

		It("should deny approval beyond the manager's limit", func() {
			t := createPending(employee, "5000", true) // post-tax 5900 > 2000

			_, err := service.Approve(ctx, manager, t.ID)
			Expect(err).To(Equal(internal.ErrExceedsLimit))

			unchanged, _ := repo.GetByID(t.ID)
			Expect(unchanged.Status).To(Equal(transactionDatamodel.StatusPending))
		})

		It("should surface insufficient funds and leave the status untouched", func() {
			repo.balance = decimal.NewFromInt(100)
			t := createPending(employee, "1000", true)

			_, err := service.Approve(ctx, manager, t.ID)
			Expect(err).To(Equal(internal.ErrInsufficientFunds))

			unchanged, _ := repo.GetByID(t.ID)
			Expect(unchanged.Status).To(Equal(transactionDatamodel.StatusPending))
			Expect(repo.balance.Equal(decimal.NewFromInt(100))).To(BeTrue())
		})

		It("should reject approving an already rejected transaction", func() {
			t := createPending(employee, "1000", false)
			_, err := service.Reject(ctx, manager, t.ID, transaction.RejectTransactionDTO{Comment: "not justified"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, manager, t.ID)
			Expect(err).To(Equal(internal.ErrInvalidStatus))
		})
	})

	Describe("Reject", func() {
		It("should require a comment", func() {
			t := createPending(employee, "1000", false)

			_, err := service.Reject(ctx, manager, t.ID, transaction.RejectTransactionDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("should record the comment and rejected status", func() {
			t := createPending(employee, "1000", false)

			rejected, err := service.Reject(ctx, manager, t.ID, transaction.RejectTransactionDTO{Comment: "no invoice attached"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.Status).To(Equal(transactionDatamodel.StatusRejected))
			Expect(*rejected.AdminComment).To(Equal("no invoice attached"))
		})
	})

	Describe("RequestInfo and Resubmit", func() {
		It("should loop info_requested back into review via resubmit", func() {
			t := createPending(employee, "1000", false)

			_, err := service.Submit(ctx, employee, t.ID)
			Expect(err).NotTo(HaveOccurred())

			infoRequested, err := service.RequestInfo(ctx, manager, t.ID, transaction.RequestInfoDTO{Comment: "attach the bill"})
			Expect(err).NotTo(HaveOccurred())
			Expect(infoRequested.Status).To(Equal(transactionDatamodel.StatusInfoRequested))

			resubmitted, err := service.Resubmit(ctx, employee, t.ID, transaction.ResubmitTransactionDTO{
				PreTaxAmount: amountOf("900"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resubmitted.Status).To(Equal(transactionDatamodel.StatusPendingApproval))
			Expect(resubmitted.InfoRequestComment).To(BeNil())
			Expect(resubmitted.PostTaxAmount.Equal(decimal.NewFromInt(900))).To(BeTrue())
		})

		It("should only let the original submitter resubmit", func() {
			t := createPending(employee, "1000", false)
			_, err := service.Submit(ctx, employee, t.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RequestInfo(ctx, manager, t.ID, transaction.RequestInfoDTO{Comment: "details please"})
			Expect(err).NotTo(HaveOccurred())

			other := &auth.Principal{ID: 99, Role: userDatamodel.RoleEmployee}
			_, err = service.Resubmit(ctx, other, t.ID, transaction.ResubmitTransactionDTO{})
			Expect(err).To(Equal(internal.ErrNotOwner))
		})

		It("should only allow request-info from pending_approval", func() {
			t := createPending(employee, "1000", false)

			_, err := service.RequestInfo(ctx, manager, t.ID, transaction.RequestInfoDTO{Comment: "anything"})
			Expect(err).To(Equal(internal.ErrInvalidStatus))
		})
	})

	Describe("Pay", func() {
		It("should mark an approved transaction paid", func() {
			t := createPending(employee, "1000", false)
			_, err := service.Approve(ctx, manager, t.ID)
			Expect(err).NotTo(HaveOccurred())

			paid, err := service.Pay(ctx, employee, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(paid.Status).To(Equal(transactionDatamodel.StatusPaid))
			Expect(paid.PaidAt).NotTo(BeNil())
		})

		It("should treat paying twice as a no-op success", func() {
			t := createPending(employee, "1000", false)
			_, err := service.Approve(ctx, manager, t.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Pay(ctx, employee, t.ID)
			Expect(err).NotTo(HaveOccurred())

			again, err := service.Pay(ctx, employee, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Status).To(Equal(transactionDatamodel.StatusPaid))
		})

		It("should refuse paying an unapproved transaction", func() {
			t := createPending(employee, "1000", false)

			_, err := service.Pay(ctx, employee, t.ID)
			Expect(err).To(Equal(internal.ErrInvalidStatus))
		})
	})

	Describe("Delete", func() {
		It("should be admin-only", func() {
			t := createPending(employee, "1000", false)

			err := service.Delete(ctx, employee, t.ID)
			Expect(err).To(HaveOccurred())

			err = service.Delete(ctx, admin, t.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.GetByID(t.ID)
			Expect(err).To(Equal(internal.ErrTransactionNotFound))
		})

		It("should not credit the ledger back for approved transactions", func() {
			t := createPending(employee, "1000", false)
			_, err := service.Approve(ctx, manager, t.ID)
			Expect(err).NotTo(HaveOccurred())
			balanceAfterApproval := repo.balance

			err = service.Delete(ctx, admin, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.balance.Equal(balanceAfterApproval)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("should scope employees to their own transactions", func() {
			createPending(employee, "1000", false)
			other := &auth.Principal{ID: 99, Role: userDatamodel.RoleEmployee}
			createPending(other, "500", false)

			items, total, err := service.List(ctx, employee, transaction.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(items).To(HaveLen(1))
			Expect(items[0].SubmittedBy).To(Equal(employee.ID))
		})

		It("should let admins see everything", func() {
			createPending(employee, "1000", false)
			other := &auth.Principal{ID: 99, Role: userDatamodel.RoleEmployee}
			createPending(other, "500", false)

			_, total, err := service.List(ctx, admin, transaction.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
		})
	})
})

var _ = Describe("State machine", func() {
	It("should permit the documented transitions", func() {
		Expect(transaction.CanTransition(transactionDatamodel.StatusDraft, transactionDatamodel.StatusPendingApproval)).To(BeTrue())
		Expect(transaction.CanTransition(transactionDatamodel.StatusPending, transactionDatamodel.StatusApproved)).To(BeTrue())
		Expect(transaction.CanTransition(transactionDatamodel.StatusPendingApproval, transactionDatamodel.StatusInfoRequested)).To(BeTrue())
		Expect(transaction.CanTransition(transactionDatamodel.StatusInfoRequested, transactionDatamodel.StatusPendingApproval)).To(BeTrue())
		Expect(transaction.CanTransition(transactionDatamodel.StatusApproved, transactionDatamodel.StatusPaid)).To(BeTrue())
	})

	It("should forbid transitions out of terminal states", func() {
		Expect(transaction.CanTransition(transactionDatamodel.StatusRejected, transactionDatamodel.StatusApproved)).To(BeFalse())
		Expect(transaction.CanTransition(transactionDatamodel.StatusPaid, transactionDatamodel.StatusApproved)).To(BeFalse())
		Expect(transaction.CanTransition(transactionDatamodel.StatusDraft, transactionDatamodel.StatusApproved)).To(BeFalse())
	})

	It("should flag rejected and paid as terminal", func() {
		Expect(transaction.IsTerminal(transactionDatamodel.StatusRejected)).To(BeTrue())
		Expect(transaction.IsTerminal(transactionDatamodel.StatusPaid)).To(BeTrue())
		Expect(transaction.IsTerminal(transactionDatamodel.StatusPendingApproval)).To(BeFalse())
	})
})
