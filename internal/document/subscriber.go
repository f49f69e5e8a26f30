package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmarquez/inventory-management/internal/core/events"
	"github.com/dmarquez/inventory-management/internal/item"
	"github.com/dmarquez/inventory-management/internal/movement"
)

type MovementAPI interface {
	Get(id string) (*movement.Movement, error)
	UpdateAnnotations(movementID string, dto movement.AnnotateDTO) (*movement.Movement, error)
}

type ItemAPI interface {
	Get(id string) (*item.Item, error)
}

type Uploader interface {
	Upload(ctx context.Context, objectName string, data []byte) (string, error)
}

// Subscriber renders and attaches exit receipts after the ledger write
// commits. Everything in here is best effort: a failed render or upload
// leaves document_url empty and logs a warning, the movement stands.
type Subscriber struct {
	generator *Generator
	storage   Uploader
	movements MovementAPI
	items     ItemAPI
	logger    *slog.Logger
}

func NewSubscriber(generator *Generator, storage Uploader, movements MovementAPI, items ItemAPI, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		generator: generator,
		storage:   storage,
		movements: movements,
		items:     items,
		logger:    logger,
	}
}

func (s *Subscriber) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeMovementRecorded, s.handleMovementRecorded)
}

func (s *Subscriber) handleMovementRecorded(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(events.MovementRecordedData)
	if !ok {
		s.logger.Warn("unexpected payload on movement event", "event_id", event.EventID())
		return nil
	}
	if data.MovementType != movement.TypeExit {
		return nil
	}

	mov, err := s.movements.Get(data.MovementID)
	if err != nil {
		s.logger.Warn("receipt skipped: movement not found",
			"movement_id", data.MovementID, "error", err)
		return nil
	}

	receipt := ExitReceiptData{
		MovementID: mov.ID,
		Quantity:   mov.Quantity,
		UnitCost:   mov.UnitCost,
		TotalCost:  mov.TotalCost,
		Reason:     mov.Reason,
		CreatedBy:  mov.CreatedBy,
		CreatedAt:  mov.CreatedAt,
	}

	if it, err := s.items.Get(mov.ItemID); err == nil {
		receipt.ItemCode = it.Code
		receipt.ItemName = it.Name
	} else {
		s.logger.Warn("receipt item lookup failed, rendering without item details",
			"movement_id", mov.ID, "item_id", mov.ItemID, "error", err)
	}

	pdf, err := s.generator.ExitReceipt(receipt)
	if err != nil {
		s.logger.Warn("receipt render failed",
			"movement_id", mov.ID, "error", err)
		return nil
	}

	objectName := fmt.Sprintf("receipts/%s/%s.pdf",
		mov.CreatedAt.Format("2006/01"), mov.ID)

	uploadCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	url, err := s.storage.Upload(uploadCtx, objectName, pdf)
	if err != nil {
		s.logger.Warn("receipt upload failed",
			"movement_id", mov.ID, "error", err)
		return nil
	}

	if _, err := s.movements.UpdateAnnotations(mov.ID, movement.AnnotateDTO{DocumentURL: &url}); err != nil {
		s.logger.Warn("receipt url attach failed",
			"movement_id", mov.ID, "url", url, "error", err)
		return nil
	}

	s.logger.Info("exit receipt attached", "movement_id", mov.ID, "url", url)
	return nil
}
