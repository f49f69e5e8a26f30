package item

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(item *Item) error
	GetByID(id string) (*Item, error)
	GetDeletedByID(id string) (*Item, error)
	CodeInUse(code string) (bool, error)
	Update(item *Item) error
	MarkDeleted(id string, deletedAt time.Time, deletedBy string) error
	ClearDeleted(id string) error
	HardDelete(id string) error
	List(filter ListFilter) ([]*Item, error)
}

// MovementCounter is the deletion gate: an item referenced by the
// ledger can never be removed, softly or otherwise.
type MovementCounter interface {
	CountForItem(itemID string) (int64, error)
}

type Service struct {
	repo      Repository
	movements MovementCounter
	logger    *slog.Logger
}

func NewService(repo Repository, movements MovementCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		movements: movements,
		logger:    logger,
	}
}

// Create registers a catalog entry. Stock starts at zero no matter
// what the caller sent; only the movement ledger writes that column.
func (s *Service) Create(dto CreateItemDTO, actor string) (*Item, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("item validation failed", "error", err, "actor", actor)
		return nil, err
	}

	inUse, err := s.repo.CodeInUse(dto.Code)
	if err != nil {
		return nil, err
	}
	if inUse {
		s.logger.Warn("duplicate item code rejected", "code", dto.Code, "actor", actor)
		return nil, ErrDuplicateCode
	}

	now := time.Now()
	item := &Item{
		ID:           uuid.NewString(),
		Type:         dto.Type,
		Code:         dto.Code,
		Name:         dto.Name,
		Description:  dto.Description,
		Brand:        dto.Brand,
		Model:        dto.Model,
		Year:         dto.Year,
		Category:     dto.Category,
		UnitCost:     dto.UnitCost,
		CurrentStock: 0,
		MinStock:     dto.MinStock,
		Location:     dto.Location,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    actor,
	}

	if err := s.repo.Create(item); err != nil {
		if err == ErrDuplicateCode {
			return nil, err
		}
		s.logger.Error("failed to create item", "error", err, "code", dto.Code)
		return nil, err
	}

	s.logger.Info("item created",
		"item_id", item.ID,
		"code", item.Code,
		"type", item.Type,
		"actor", actor)
	return item, nil
}

// Update edits everything except code and current_stock, which the
// DTO cannot even express.
func (s *Service) Update(id string, dto UpdateItemDTO, actor string) (*Item, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("item validation failed", "error", err, "item_id", id)
		return nil, err
	}

	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	item.Type = dto.Type
	item.Name = dto.Name
	item.Description = dto.Description
	item.Brand = dto.Brand
	item.Model = dto.Model
	item.Year = dto.Year
	item.Category = dto.Category
	item.UnitCost = dto.UnitCost
	item.MinStock = dto.MinStock
	item.Location = dto.Location
	item.IsActive = dto.IsActive
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(item); err != nil {
		s.logger.Error("failed to update item", "error", err, "item_id", id)
		return nil, err
	}

	s.logger.Info("item updated", "item_id", id, "actor", actor)
	return item, nil
}

// SoftDelete hides an item that the ledger never touched.
func (s *Service) SoftDelete(id string, actor string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	count, err := s.movements.CountForItem(id)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Warn("soft delete blocked by movement history",
			"item_id", id, "movement_count", count)
		return &HasMovementsError{Count: count}
	}

	if err := s.repo.MarkDeleted(id, time.Now(), actor); err != nil {
		s.logger.Error("failed to soft delete item", "error", err, "item_id", id)
		return err
	}

	s.logger.Info("item soft deleted", "item_id", id, "actor", actor)
	return nil
}

// Restore brings a soft-deleted item back; its code re-enters the
// active uniqueness scope.
func (s *Service) Restore(id string, actor string) (*Item, error) {
	deleted, err := s.repo.GetDeletedByID(id)
	if err != nil {
		return nil, err
	}

	// the code may have been reused while this item was deleted
	inUse, err := s.repo.CodeInUse(deleted.Code)
	if err != nil {
		return nil, err
	}
	if inUse {
		s.logger.Warn("restore blocked: code reused by an active item",
			"item_id", id, "code", deleted.Code)
		return nil, ErrDuplicateCode
	}

	if err := s.repo.ClearDeleted(id); err != nil {
		s.logger.Error("failed to restore item", "error", err, "item_id", id)
		return nil, err
	}

	s.logger.Info("item restored", "item_id", id, "actor", actor)
	return s.repo.GetByID(id)
}

// HardDelete physically removes the row. Same ledger gate as soft
// delete; irreversible.
func (s *Service) HardDelete(id string) error {
	item, err := s.repo.GetByID(id)
	if err != nil {
		if err != ErrItemNotFound {
			return err
		}
		// hard delete also applies to already soft-deleted items
		item, err = s.repo.GetDeletedByID(id)
		if err != nil {
			return err
		}
	}

	count, err := s.movements.CountForItem(item.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Warn("hard delete blocked by movement history",
			"item_id", id, "movement_count", count)
		return &HasMovementsError{Count: count}
	}

	if err := s.repo.HardDelete(id); err != nil {
		s.logger.Error("failed to hard delete item", "error", err, "item_id", id)
		return err
	}

	s.logger.Info("item hard deleted", "item_id", id)
	return nil
}

func (s *Service) Get(id string) (*Item, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(filter ListFilter) ([]*Item, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(filter)
}
