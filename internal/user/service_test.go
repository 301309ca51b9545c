package user_test

import (
	"context"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
	"github.com/Poorani-S/pettycash-backend/internal/user"
	"github.com/Poorani-S/pettycash-backend/pkg/logger"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

type mockRepository struct {
	users  map[int64]*userDatamodel.User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[int64]*userDatamodel.User{}, nextID: 1}
}

func (m *mockRepository) Create(u *userDatamodel.User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *mockRepository) GetByID(id int64) (*userDatamodel.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockRepository) List(filters user.ListFilters) ([]*userDatamodel.User, error) {
	var out []*userDatamodel.User
	for _, u := range m.users {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if filters.IsActive != nil && u.IsActive != *filters.IsActive {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filters.Search)) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) Update(u *userDatamodel.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockRepository) SetActive(id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return internal.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
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
		bus     *recordingBus
		service *user.Service
		ctx     context.Context

		admin    *auth.Principal
		manager  *auth.Principal
		employee *auth.Principal
	)

	createDTO := func() user.CreateUserDTO {
		return user.CreateUserDTO{
			Name:     "Kavya R",
			Email:    "kavya@pettycash.local",
			Password: "s3cret-pass",
			Role:     userDatamodel.RoleEmployee,
		}
	}

	BeforeEach(func() {
		repo = newMockRepository()
		bus = &recordingBus{}
		log := logger.LoggerWrapper()
		service = user.NewService(repo, plainHasher{}, approval.NewPolicy(log), bus, log)
		ctx = context.Background()

		admin = &auth.Principal{ID: 100, Name: "Asha", Role: userDatamodel.RoleAdmin}
		manager = &auth.Principal{ID: 101, Name: "Meera", Role: userDatamodel.RoleManager}
		employee = &auth.Principal{ID: 104, Name: "Esha", Role: userDatamodel.RoleEmployee}
	})

	Describe("Create", func() {
		It("should create a user with a hashed password", func() {
			resp, err := service.Create(ctx, admin, createDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ID).To(BeNumerically(">", 0))
			Expect(resp.IsActive).To(BeTrue())

			stored := repo.users[resp.ID]
			Expect(stored.PasswordHash).To(HaveValue(Equal("hashed:s3cret-pass")))
		})

		It("should publish a user changed event", func() {
			_, err := service.Create(ctx, admin, createDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.EventTypeUserChanged))
		})

		It("should refuse non-admins, manager included", func() {
			_, err := service.Create(ctx, manager, createDTO())
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should lowercase the email and reject duplicates", func() {
			dto := createDTO()
			dto.Email = "  KAVYA@pettycash.local "
			resp, err := service.Create(ctx, admin, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Email).To(Equal("kavya@pettycash.local"))

			_, err = service.Create(ctx, admin, createDTO())
			Expect(err).To(HaveOccurred())
		})

		It("should reject a short password", func() {
			dto := createDTO()
			dto.Password = "short"
			_, err := service.Create(ctx, admin, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown role", func() {
			dto := createDTO()
			dto.Role = "superuser"
			_, err := service.Create(ctx, admin, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Get", func() {
		var targetID int64

		BeforeEach(func() {
			resp, err := service.Create(ctx, admin, createDTO())
			Expect(err).NotTo(HaveOccurred())
			targetID = resp.ID
		})

		It("should let a manager view anyone", func() {
			resp, err := service.Get(ctx, manager, targetID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Name).To(Equal("Kavya R"))
		})

		It("should let a user view themselves", func() {
			self := &auth.Principal{ID: targetID, Role: userDatamodel.RoleEmployee}
			_, err := service.Get(ctx, self, targetID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse an employee viewing someone else", func() {
			_, err := service.Get(ctx, employee, targetID)
			Expect(err).To(Equal(internal.ErrNotOwner))
		})

		It("should normalize a legacy stored role in the response", func() {
			repo.users[targetID].Role = "custodian"

			resp, err := service.Get(ctx, admin, targetID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal(userDatamodel.RoleEmployee))
		})
	})

	Describe("Update", func() {
		var targetID int64

		BeforeEach(func() {
			resp, err := service.Create(ctx, admin, createDTO())
			Expect(err).NotTo(HaveOccurred())
			targetID = resp.ID
		})

		It("should let a user edit their own profile", func() {
			self := &auth.Principal{ID: targetID, Role: userDatamodel.RoleEmployee}
			name := "Kavya Raman"

			resp, err := service.Update(ctx, self, targetID, user.UpdateUserDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Name).To(Equal("Kavya Raman"))
		})

		It("should refuse a self-service approval limit change", func() {
			self := &auth.Principal{ID: targetID, Role: userDatamodel.RoleEmployee}
			limit := decimal.NewFromInt(100000)

			_, err := service.Update(ctx, self, targetID, user.UpdateUserDTO{ApprovalLimit: &limit})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should let an admin set the approval limit", func() {
			limit := decimal.NewFromInt(10000)

			resp, err := service.Update(ctx, admin, targetID, user.UpdateUserDTO{ApprovalLimit: &limit})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ApprovalLimit.Equal(limit)).To(BeTrue())
		})

		It("should refuse editing someone else's profile", func() {
			name := "Hijacked"
			_, err := service.Update(ctx, employee, targetID, user.UpdateUserDTO{Name: &name})
			Expect(err).To(Equal(internal.ErrNotOwner))
		})
	})

	Describe("ChangeRole", func() {
		var targetID int64

		BeforeEach(func() {
			resp, err := service.Create(ctx, admin, createDTO())
			Expect(err).NotTo(HaveOccurred())
			targetID = resp.ID
		})

		It("should change role and approval limit together", func() {
			limit := decimal.NewFromInt(10000)

			resp, err := service.ChangeRole(ctx, admin, targetID, user.ChangeRoleDTO{
				Role:          userDatamodel.RoleApprover,
				ApprovalLimit: &limit,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal(userDatamodel.RoleApprover))
			Expect(resp.ApprovalLimit.Equal(limit)).To(BeTrue())
		})

		It("should refuse non-admins", func() {
			_, err := service.ChangeRole(ctx, manager, targetID, user.ChangeRoleDTO{Role: userDatamodel.RoleApprover})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown role", func() {
			_, err := service.ChangeRole(ctx, admin, targetID, user.ChangeRoleDTO{Role: "root"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Deactivate and Reactivate", func() {
		var targetID int64

		BeforeEach(func() {
			resp, err := service.Create(ctx, admin, createDTO())
			Expect(err).NotTo(HaveOccurred())
			targetID = resp.ID
		})

		It("should toggle the active flag", func() {
			Expect(service.Deactivate(ctx, admin, targetID)).To(Succeed())
			Expect(repo.users[targetID].IsActive).To(BeFalse())

			Expect(service.Reactivate(ctx, admin, targetID)).To(Succeed())
			Expect(repo.users[targetID].IsActive).To(BeTrue())
		})

		It("should refuse an admin deactivating themselves", func() {
			err := service.Deactivate(ctx, admin, admin.ID)
			Expect(err).To(HaveOccurred())
		})

		It("should refuse non-admins", func() {
			err := service.Deactivate(ctx, manager, targetID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			_, err := service.Create(ctx, admin, createDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := createDTO()
			dto.Email = "rahul@pettycash.local"
			dto.Name = "Rahul V"
			dto.Role = userDatamodel.RoleApprover
			_, err = service.Create(ctx, admin, dto)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should filter by role", func() {
			users, err := service.List(ctx, admin, user.ListFilters{Role: userDatamodel.RoleApprover})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Name).To(Equal("Rahul V"))
		})

		It("should refuse an employee", func() {
			_, err := service.List(ctx, employee, user.ListFilters{})
			Expect(err).To(HaveOccurred())
		})
	})
})
