package user

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dmarquez/inventory-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserService Suite")
}

type fakeRepo struct {
	active  map[string]*User
	deleted map[string]*User
	hashes  map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		active:  make(map[string]*User),
		deleted: make(map[string]*User),
		hashes:  make(map[string]string),
	}
}

func (f *fakeRepo) Create(u *User, passwordHash string) error {
	f.active[u.ID] = u
	f.hashes[u.ID] = passwordHash
	return nil
}

func (f *fakeRepo) GetByID(id string) (*User, error) {
	u, ok := f.active[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepo) GetDeletedByID(id string) (*User, error) {
	u, ok := f.deleted[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepo) EmailInUse(email string) (bool, error) {
	for _, u := range f.active {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Update(u *User) error {
	if _, ok := f.active[u.ID]; !ok {
		return ErrUserNotFound
	}
	f.active[u.ID] = u
	return nil
}

func (f *fakeRepo) SetActive(id string, active bool) error {
	u, ok := f.active[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeRepo) MarkDeleted(id string, deletedAt time.Time, deletedBy string) error {
	u, ok := f.active[id]
	if !ok {
		return ErrUserNotFound
	}
	u.DeletedAt = &deletedAt
	u.DeletedBy = &deletedBy
	u.IsActive = false
	delete(f.active, id)
	f.deleted[id] = u
	return nil
}

func (f *fakeRepo) ClearDeleted(id string) error {
	u, ok := f.deleted[id]
	if !ok {
		return ErrNotDeleted
	}
	u.DeletedAt = nil
	u.DeletedBy = nil
	u.IsActive = true
	delete(f.deleted, id)
	f.active[id] = u
	return nil
}

func (f *fakeRepo) List(includeDeleted bool) ([]*User, error) {
	var out []*User
	for _, u := range f.active {
		out = append(out, u)
	}
	if includeDeleted {
		for _, u := range f.deleted {
			out = append(out, u)
		}
	}
	return out, nil
}

var _ = Describe("UserService", func() {
	var (
		repo    *fakeRepo
		service *Service
	)

	validCreate := func(email string) CreateUserDTO {
		return CreateUserDTO{
			Email:    email,
			Name:     "Test Clerk",
			Password: "password123",
			Role:     internal.RoleUser,
		}
	}

	BeforeEach(func() {
		repo = newFakeRepo()
		service = NewService(repo, bcrypt.MinCost, slog.Default())
	})

	Describe("Create", func() {
		It("stores a bcrypt hash, never the raw password", func() {
			created, err := service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(created.IsActive).To(BeTrue())
			Expect(*created.CreatedBy).To(Equal("admin-1"))

			hash := repo.hashes[created.ID]
			Expect(hash).NotTo(Equal("password123"))
			Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123"))).To(Succeed())
		})

		It("rejects an email held by an active account", func() {
			_, err := service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).To(MatchError(ErrDuplicateEmail))
		})

		It("allows reusing the email of a soft-deleted account", func() {
			first, err := service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(first.ID, "admin-1")).To(Succeed())

			_, err = service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects malformed emails, short passwords and unknown roles", func() {
			dto := validCreate("not-an-email")
			_, err := service.Create(dto, "admin-1")
			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))

			dto = validCreate("clerk@taller.local")
			dto.Password = "short"
			_, err = service.Create(dto, "admin-1")
			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))

			dto = validCreate("clerk@taller.local")
			dto.Role = "SUPERVISOR"
			_, err = service.Create(dto, "admin-1")
			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
		})
	})

	Describe("Restore", func() {
		It("round-trips an account through delete and restore", func() {
			created, err := service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(created.ID, "admin-2")).To(Succeed())

			_, err = service.Get(created.ID)
			Expect(err).To(MatchError(ErrUserNotFound))

			restored, err := service.Restore(created.ID, "admin-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.DeletedAt).To(BeNil())
			Expect(restored.IsActive).To(BeTrue())
		})

		It("refuses to restore when the email was reused", func() {
			first, err := service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(first.ID, "admin-1")).To(Succeed())

			_, err = service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Restore(first.ID, "admin-1")
			Expect(err).To(MatchError(ErrDuplicateEmail))
		})
	})

	Describe("SetActive", func() {
		It("flips the account switch", func() {
			created, err := service.Create(validCreate("clerk@taller.local"), "admin-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.SetActive(created.ID, false, "admin-1")).To(Succeed())
			got, err := service.Get(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsActive).To(BeFalse())
		})

		It("errors on unknown accounts", func() {
			Expect(service.SetActive("ghost", false, "admin-1")).To(MatchError(ErrUserNotFound))
		})
	})

	Describe("RoleOf", func() {
		It("resolves the stored role", func() {
			dto := validCreate("admin2@taller.local")
			dto.Role = internal.RoleAdmin
			created, err := service.Create(dto, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			role, err := service.RoleOf(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(role).To(Equal(internal.RoleAdmin))
		})
	})
})
