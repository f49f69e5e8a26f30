package user

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	Create(u *User, passwordHash string) error
	GetByID(id string) (*User, error)
	GetDeletedByID(id string) (*User, error)
	EmailInUse(email string) (bool, error)
	Update(u *User) error
	SetActive(id string, active bool) error
	MarkDeleted(id string, deletedAt time.Time, deletedBy string) error
	ClearDeleted(id string) error
	List(includeDeleted bool) ([]*User, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create registers an account with its credential in one write.
func (s *Service) Create(dto CreateUserDTO, actor string) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("user validation failed", "error", err, "actor", actor)
		return nil, err
	}

	inUse, err := s.repo.EmailInUse(dto.Email)
	if err != nil {
		return nil, err
	}
	if inUse {
		s.logger.Warn("duplicate email rejected", "email", dto.Email, "actor", actor)
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:        uuid.NewString(),
		Email:     dto.Email,
		Name:      dto.Name,
		Role:      dto.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: &actor,
	}

	if err := s.repo.Create(u, string(hash)); err != nil {
		if err == ErrDuplicateEmail {
			return nil, err
		}
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created",
		"user_id", u.ID,
		"role", u.Role,
		"actor", actor)
	return u, nil
}

func (s *Service) Update(id string, dto UpdateUserDTO, actor string) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	u.Name = dto.Name
	u.Role = dto.Role
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "actor", actor)
	return u, nil
}

// SetActive flips the account switch. A disabled account fails the
// per-request identity gate on its next call.
func (s *Service) SetActive(id string, active bool, actor string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.SetActive(id, active); err != nil {
		s.logger.Error("failed to set user active flag", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user active flag changed",
		"user_id", id, "is_active", active, "actor", actor)
	return nil
}

// SoftDelete invalidates the account as a session principal from this
// write onward.
func (s *Service) SoftDelete(id string, actor string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.MarkDeleted(id, time.Now(), actor); err != nil {
		s.logger.Error("failed to soft delete user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user soft deleted", "user_id", id, "actor", actor)
	return nil
}

func (s *Service) Restore(id string, actor string) (*User, error) {
	deleted, err := s.repo.GetDeletedByID(id)
	if err != nil {
		return nil, err
	}

	// the email may have been reused while this account was deleted
	inUse, err := s.repo.EmailInUse(deleted.Email)
	if err != nil {
		return nil, err
	}
	if inUse {
		s.logger.Warn("restore blocked: email reused by an active account",
			"user_id", id, "email", deleted.Email)
		return nil, ErrDuplicateEmail
	}

	if err := s.repo.ClearDeleted(id); err != nil {
		s.logger.Error("failed to restore user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user restored", "user_id", id, "actor", actor)
	return s.repo.GetByID(id)
}

func (s *Service) Get(id string) (*User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(includeDeleted bool) ([]*User, error) {
	return s.repo.List(includeDeleted)
}

// RoleOf resolves a user's role; the permission endpoints use it to
// compute effective permission sets.
func (s *Service) RoleOf(userID string) (string, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
