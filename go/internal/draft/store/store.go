// Package store defines the storage adapter the draft engine runs against.
// Implementations own atomic pick appends and push room and pick updates to
// subscribers in pick-number order.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/snakedraft/go/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	// ErrPickConflict means the pick number being appended is no longer next.
	ErrPickConflict = errors.New("pick number is no longer next")
	ErrPlayerTaken  = errors.New("player already drafted")
)

// Unsubscribe stops a subscription. It is safe to call more than once.
type Unsubscribe func()

// Store is the storage adapter contract.
type Store interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	SubscribeToRoom(ctx context.Context, roomID uuid.UUID, onUpdate func(models.Room)) (Unsubscribe, error)
	GetPicks(ctx context.Context, roomID uuid.UUID) ([]models.Pick, error)
	SubscribeToPicks(ctx context.Context, roomID uuid.UUID, onUpdate func([]models.Pick)) (Unsubscribe, error)
	// AddPick appends pick atomically, assigning its id, and fails with
	// ErrPickConflict when pick.PickNumber is not the next pick.
	AddPick(ctx context.Context, roomID uuid.UUID, pick models.Pick) (*models.Pick, error)
	GetAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error)
	UpdateRoomStatus(ctx context.Context, roomID uuid.UUID, status models.RoomStatus) error
	GetAutodraftConfig(ctx context.Context, participantID uuid.UUID) (*models.AutodraftConfig, error)
	SaveAutodraftConfig(ctx context.Context, participantID uuid.UUID, update models.AutodraftConfigUpdate) (*models.AutodraftConfig, error)
}

// CopyRoom returns a copy of r that shares no slices or maps with it
func CopyRoom(r models.Room) models.Room {
	out := r
	out.Participants = append([]models.Participant(nil), r.Participants...)
	out.PositionLimits = r.PositionLimits.Clone()
	if r.StartedAt != nil {
		t := *r.StartedAt
		out.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
