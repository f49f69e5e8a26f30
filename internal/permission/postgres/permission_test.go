package postgres

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dmarquez/inventory-management/internal"
	permissionDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/permission"
	"github.com/dmarquez/inventory-management/internal/permission"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPermissionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PermissionRepository Suite")
}

var _ = Describe("PermissionRepository", func() {
	var (
		db      *gorm.DB
		repo    *PermissionRepository
		service *permission.Service

		permA, permB, permC string
	)

	seedPermission := func(code string) string {
		id := uuid.NewString()
		Expect(db.Create(&permissionDatamodel.Permission{
			ID:       id,
			Code:     code,
			Name:     code,
			Category: "test",
		}).Error).NotTo(HaveOccurred())
		return id
	}

	openCodes := func(userID string) []string {
		codes, err := service.EffectivePermissions(userID, internal.RoleUser)
		Expect(err).NotTo(HaveOccurred())
		return codes
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&permissionDatamodel.Permission{}, &permissionDatamodel.Grant{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewPermissionRepository(db)
		service = permission.NewService(repo, slog.Default())

		permA = seedPermission("inventory.view")
		permB = seedPermission("movements.view")
		permC = seedPermission("reports.view")
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("Grant", func() {
		It("opens a grant once and rejects the duplicate", func() {
			_, err := service.Grant("user-1", permA, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Grant("user-1", permA, "admin-1")
			Expect(err).To(MatchError(permission.ErrDuplicateGrant))
		})

		It("allows re-granting after a revoke, keeping history", func() {
			_, err := service.Grant("user-1", permA, "admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Revoke("user-1", permA, "admin-1")).To(Succeed())

			_, err = service.Grant("user-1", permA, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			history, err := service.History("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))

			var open, closed int
			for _, g := range history {
				if g.IsOpen() {
					open++
				} else {
					closed++
					Expect(g.RevokedBy).NotTo(BeNil())
				}
			}
			Expect(open).To(Equal(1))
			Expect(closed).To(Equal(1))
		})

		It("rejects an unknown permission id", func() {
			_, err := service.Grant("user-1", uuid.NewString(), "admin-1")
			Expect(err).To(MatchError(permission.ErrPermissionNotFound))
		})

		It("persists a grant with no actor as a null granted_by", func() {
			grant, err := service.Grant("user-1", permA, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(grant.GrantedBy).To(BeNil())

			open, err := repo.OpenGrants("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(HaveLen(1))
			Expect(open[0].GrantedBy).To(BeNil())
		})
	})

	Describe("Revoke", func() {
		It("is a no-op when nothing is granted", func() {
			Expect(service.Revoke("user-1", permA, "admin-1")).To(Succeed())

			history, err := service.History("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(BeEmpty())
		})
	})

	Describe("Reconcile", func() {
		It("converges {B, C} to {A, B}: grants A, revokes C, leaves B alone", func() {
			_, err := service.Grant("user-1", permB, "admin-1")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Grant("user-1", permC, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			grantsBefore, err := repo.OpenGrants("user-1")
			Expect(err).NotTo(HaveOccurred())
			var grantBID string
			for _, g := range grantsBefore {
				if g.PermissionID == permB {
					grantBID = g.ID
				}
			}

			Expect(service.Reconcile("user-1", []string{permA, permB}, "admin-1")).To(Succeed())

			Expect(openCodes("user-1")).To(ConsistOf("inventory.view", "movements.view"))

			// B's original grant row is untouched, not reissued
			grantsAfter, err := repo.OpenGrants("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(grantsAfter).To(HaveLen(2))
			for _, g := range grantsAfter {
				if g.PermissionID == permB {
					Expect(g.ID).To(Equal(grantBID))
				}
			}

			// no duplicate open grants for any pair
			seen := make(map[string]bool)
			for _, g := range grantsAfter {
				Expect(seen[g.PermissionID]).To(BeFalse())
				seen[g.PermissionID] = true
			}
		})

		It("rejects unknown ids without changing anything", func() {
			_, err := service.Grant("user-1", permB, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			err = service.Reconcile("user-1", []string{permA, uuid.NewString()}, "admin-1")
			Expect(err).To(MatchError(permission.ErrPermissionNotFound))

			Expect(openCodes("user-1")).To(ConsistOf("movements.view"))
		})

		It("revokes everything for an empty desired set", func() {
			_, err := service.Grant("user-1", permA, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Reconcile("user-1", nil, "admin-1")).To(Succeed())
			Expect(openCodes("user-1")).To(BeEmpty())
		})
	})

	Describe("EffectivePermissions", func() {
		It("gives admins the full catalog without consulting grants", func() {
			codes, err := service.EffectivePermissions("admin-1", internal.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes).To(ConsistOf("inventory.view", "movements.view", "reports.view"))
		})

		It("gives users only their open grants", func() {
			_, err := service.Grant("user-1", permA, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(openCodes("user-1")).To(ConsistOf("inventory.view"))

			Expect(service.Revoke("user-1", permA, "admin-1")).To(Succeed())
			Expect(openCodes("user-1")).To(BeEmpty())
		})
	})

	Describe("CreateGrant concurrency guard", func() {
		It("closes then counts within the same clock instant", func() {
			_, err := service.Grant("user-1", permA, "admin-1")
			Expect(err).NotTo(HaveOccurred())

			closed, err := repo.CloseGrant("user-1", permA, time.Now(), "admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(Equal(int64(1)))

			closed, err = repo.CloseGrant("user-1", permA, time.Now(), "admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(BeZero())
		})
	})
})
