package movement

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmarquez/inventory-management/internal/core/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// RecordAndApply inserts the ledger row and applies delta to the
	// item's stock in one transaction. A negative delta is refused
	// unless the item holds at least that much stock.
	RecordAndApply(m *Movement, delta int) error
	// RecordPair writes both transfer legs and both stock changes in
	// one transaction.
	RecordPair(out, in *Movement) error
	GetByID(id string) (*Movement, error)
	UpdateAnnotations(id string, notes, documentURL *string) error
	CountForItem(itemID string) (int64, error)
	List(filter ListFilter) ([]*Movement, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// RecordEntry appends an ENTRY row and increments the item's stock
// atomically.
func (s *Service) RecordEntry(dto EntryDTO, actor string) (*Movement, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("entry validation failed", "error", err, "actor", actor)
		return nil, err
	}

	m := newMovement(dto.ItemID, TypeEntry, DirectionIn, dto.Quantity, dto.UnitCost, dto.Reason, dto.Notes, actor)
	m.LotNumber = dto.LotNumber

	if err := s.repo.RecordAndApply(m, dto.Quantity); err != nil {
		s.logger.Error("failed to record entry", "error", err, "item_id", dto.ItemID)
		return nil, err
	}

	s.logger.Info("entry recorded",
		"movement_id", m.ID,
		"item_id", m.ItemID,
		"quantity", m.Quantity,
		"actor", actor)
	return m, nil
}

// RecordExit appends an EXIT row and decrements stock, refusing the
// whole operation when stock would go negative. On success the exit
// receipt pipeline is kicked off asynchronously; its failures never
// undo the movement.
func (s *Service) RecordExit(dto ExitDTO, actor string) (*Movement, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("exit validation failed", "error", err, "actor", actor)
		return nil, err
	}

	m := newMovement(dto.ItemID, TypeExit, DirectionOut, dto.Quantity, dto.UnitCost, dto.Reason, dto.Notes, actor)
	m.LotNumber = dto.LotNumber

	if err := s.repo.RecordAndApply(m, -dto.Quantity); err != nil {
		s.logger.Error("failed to record exit", "error", err, "item_id", dto.ItemID)
		return nil, err
	}

	s.logger.Info("exit recorded",
		"movement_id", m.ID,
		"item_id", m.ItemID,
		"quantity", m.Quantity,
		"actor", actor)

	s.publishRecorded(m)
	return m, nil
}

// RecordAdjustment appends an ADJUSTMENT row in the stated direction.
// OUT adjustments are guarded the same way exits are.
func (s *Service) RecordAdjustment(dto AdjustmentDTO, actor string) (*Movement, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("adjustment validation failed", "error", err, "actor", actor)
		return nil, err
	}

	delta := dto.Quantity
	if dto.Direction == DirectionOut {
		delta = -dto.Quantity
	}

	m := newMovement(dto.ItemID, TypeAdjustment, dto.Direction, dto.Quantity, dto.UnitCost, dto.Reason, dto.Notes, actor)

	if err := s.repo.RecordAndApply(m, delta); err != nil {
		s.logger.Error("failed to record adjustment", "error", err, "item_id", dto.ItemID)
		return nil, err
	}

	s.logger.Info("adjustment recorded",
		"movement_id", m.ID,
		"item_id", m.ItemID,
		"direction", m.Direction,
		"quantity", m.Quantity,
		"actor", actor)
	return m, nil
}

// RecordTransfer writes a TRANSFER pair: OUT on the source, IN on the
// destination, both in one transaction so a refused source decrement
// leaves no trace of either leg.
func (s *Service) RecordTransfer(dto TransferDTO, actor string) ([]*Movement, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("transfer validation failed", "error", err, "actor", actor)
		return nil, err
	}

	// both legs share the lot so the pair stays traceable as one move
	out := newMovement(dto.SourceItemID, TypeTransfer, DirectionOut, dto.Quantity, dto.UnitCost, dto.Reason, dto.Notes, actor)
	out.LotNumber = dto.LotNumber
	in := newMovement(dto.DestinationItemID, TypeTransfer, DirectionIn, dto.Quantity, dto.UnitCost, dto.Reason, dto.Notes, actor)
	in.LotNumber = dto.LotNumber

	if err := s.repo.RecordPair(out, in); err != nil {
		s.logger.Error("failed to record transfer", "error", err,
			"source_item_id", dto.SourceItemID,
			"destination_item_id", dto.DestinationItemID)
		return nil, err
	}

	s.logger.Info("transfer recorded",
		"out_movement_id", out.ID,
		"in_movement_id", in.ID,
		"quantity", dto.Quantity,
		"actor", actor)
	return []*Movement{out, in}, nil
}

// UpdateAnnotations patches notes and document_url, the only fields a
// recorded movement ever changes.
func (s *Service) UpdateAnnotations(movementID string, dto AnnotateDTO) (*Movement, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(movementID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAnnotations(movementID, dto.Notes, dto.DocumentURL); err != nil {
		s.logger.Error("failed to annotate movement", "error", err, "movement_id", movementID)
		return nil, err
	}

	return s.repo.GetByID(movementID)
}

func (s *Service) CountForItem(itemID string) (int64, error) {
	return s.repo.CountForItem(itemID)
}

func (s *Service) Get(id string) (*Movement, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(filter ListFilter) ([]*Movement, error) {
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

func (s *Service) publishRecorded(m *Movement) {
	if s.eventBus == nil {
		return
	}
	event := events.NewMovementRecordedEvent(events.MovementRecordedData{
		MovementID:   m.ID,
		MovementType: m.Type,
		ItemID:       m.ItemID,
		Quantity:     m.Quantity,
		CreatedBy:    m.CreatedBy,
	})
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Warn("failed to publish movement event",
			"movement_id", m.ID, "error", err)
	}
}

func newMovement(itemID, movementType, direction string, quantity int, unitCost decimal.Decimal, reason string, notes *string, actor string) *Movement {
	return &Movement{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		Type:      movementType,
		Direction: direction,
		Quantity:  quantity,
		UnitCost:  unitCost,
		TotalCost: unitCost.Mul(decimal.NewFromInt(int64(quantity))),
		Reason:    reason,
		Notes:     notes,
		CreatedAt: time.Now(),
		CreatedBy: actor,
	}
}
