package pick

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/snakedraft/go/internal/models"
)

// PickStore is what the executor needs from the storage adapter
type PickStore interface {
	AddPick(ctx context.Context, roomID uuid.UUID, pick models.Pick) (*models.Pick, error)
}

// Snapshot is the draft state a pick is judged against.
type Snapshot struct {
	RoomID      uuid.UUID
	Status      models.RoomStatus
	TeamCount   int
	CurrentPick int
	Drafter     models.Participant // who the pick is made for
	Picks       []models.Pick
	Limits      models.PositionLimits
}
