package auth

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dmarquez/inventory-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuthService Suite")
}

type fakeRepo struct {
	hashByEmail map[string]string
	idByEmail   map[string]string
	profiles    map[string]*Profile
	permissions map[string][]string
	permCalls   int
}

func newAuthFakeRepo() *fakeRepo {
	return &fakeRepo{
		hashByEmail: make(map[string]string),
		idByEmail:   make(map[string]string),
		profiles:    make(map[string]*Profile),
		permissions: make(map[string][]string),
	}
}

func (f *fakeRepo) GetCredentialByEmail(email string) (string, string, error) {
	hash, ok := f.hashByEmail[email]
	if !ok {
		return "", "", ErrInvalidCredentials
	}
	return hash, f.idByEmail[email], nil
}

func (f *fakeRepo) GetProfile(userID string) (*Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetEffectivePermissions(userID string) ([]string, error) {
	f.permCalls++
	return f.permissions[userID], nil
}

func (f *fakeRepo) addAccount(id, email, password, role string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
	f.hashByEmail[email] = string(hash)
	f.idByEmail[email] = id
	f.profiles[id] = &Profile{
		ID:       id,
		Email:    email,
		Name:     "Test User",
		Role:     role,
		IsActive: true,
	}
}

var _ = Describe("AuthService", func() {
	var (
		repo    *fakeRepo
		service *Service
	)

	BeforeEach(func() {
		repo = newAuthFakeRepo()
		repo.addAccount("user-1", "clerk@taller.local", "secret-pass", internal.RoleUser)
		repo.addAccount("admin-1", "admin@taller.local", "admin-pass", internal.RoleAdmin)

		tokenGen := NewJWTTokenGenerator("access-secret", "refresh-secret", time.Minute, time.Hour)
		service = NewService(repo, tokenGen, bcrypt.MinCost, slog.Default())
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "clerk@taller.local",
				Password: "secret-pass",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("user-1"))
			Expect(claims.Email).To(Equal("clerk@taller.local"))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{
				Email:    "clerk@taller.local",
				Password: "wrong",
			})
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})

		It("rejects an unknown email with the same error", func() {
			_, err := service.Authenticate(LoginDTO{
				Email:    "nobody@taller.local",
				Password: "whatever",
			})
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})

		It("rejects a deleted account even with valid credentials", func() {
			now := time.Now()
			repo.profiles["user-1"].DeletedAt = &now

			_, err := service.Authenticate(LoginDTO{
				Email:    "clerk@taller.local",
				Password: "secret-pass",
			})
			Expect(err).To(MatchError(ErrAccountDeleted))
		})

		It("rejects a disabled account even with valid credentials", func() {
			repo.profiles["user-1"].IsActive = false

			_, err := service.Authenticate(LoginDTO{
				Email:    "clerk@taller.local",
				Password: "secret-pass",
			})
			Expect(err).To(MatchError(ErrAccountDisabled))
		})

		It("rejects empty fields before hitting storage", func() {
			_, err := service.Authenticate(LoginDTO{Email: "clerk@taller.local"})
			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "clerk@taller.local",
				Password: "secret-pass",
			})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())
		})

		It("refuses once the account is disabled", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "clerk@taller.local",
				Password: "secret-pass",
			})
			Expect(err).NotTo(HaveOccurred())

			repo.profiles["user-1"].IsActive = false

			_, err = service.RefreshTokens(tokens.RefreshToken)
			Expect(err).To(MatchError(ErrAccountDisabled))
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(MatchError(ErrInvalidToken))
		})
	})

	Describe("SessionFor", func() {
		It("loads effective permissions for regular users", func() {
			repo.permissions["user-1"] = []string{"inventory.view", "movements.view"}

			session, err := service.SessionFor("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Role).To(Equal(internal.RoleUser))
			Expect(session.Permissions).To(ConsistOf("inventory.view", "movements.view"))
			Expect(repo.permCalls).To(Equal(1))
		})

		It("skips the permission ledger for admins", func() {
			session, err := service.SessionFor("admin-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Role).To(Equal(internal.RoleAdmin))
			Expect(repo.permCalls).To(BeZero())
		})

		It("fails closed when the profile row is missing", func() {
			_, err := service.SessionFor("ghost")
			Expect(err).To(MatchError(ErrProfileNotFound))
		})
	})

	Describe("ResetPasswordToken", func() {
		It("issues an opaque token for a valid account", func() {
			token, err := service.ResetPasswordToken("clerk@taller.local")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(HaveLen(64))
		})

		It("hides whether the email exists", func() {
			_, err := service.ResetPasswordToken("nobody@taller.local")
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})
	})
})
