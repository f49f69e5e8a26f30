package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeMovementRecorded = "movement.recorded"

// MovementRecordedData is the payload the document pipeline consumes
// to render and attach an exit receipt.
type MovementRecordedData struct {
	MovementID   string `json:"movement_id"`
	MovementType string `json:"movement_type"`
	ItemID       string `json:"item_id"`
	Quantity     int    `json:"quantity"`
	CreatedBy    string `json:"created_by"`
}

type MovementRecordedEvent struct {
	BaseEvent
	Movement MovementRecordedData `json:"movement"`
}

func NewMovementRecordedEvent(data MovementRecordedData) MovementRecordedEvent {
	return MovementRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeMovementRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"movement_id":   data.MovementID,
				"movement_type": data.MovementType,
				"item_id":       data.ItemID,
			},
		},
		Movement: data,
	}
}

func (e MovementRecordedEvent) Payload() interface{} {
	return e.Movement
}
