// Package notifications signals administrators about places awaiting review.
// Signals are queued in the outbox and delivered by the outbox publisher.
package notifications

import (
	"context"
	"fmt"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/auth"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/db/models"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/outbox"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/outbox/payloads"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Notifier queues review signals for administrators.
type Notifier struct {
	db     txRunner
	outbox eventEmitter
}

// NewNotifier wires the notifier over the outbox.
func NewNotifier(db txRunner, emitter eventEmitter) (*Notifier, error) {
	if db == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Notifier{db: db, outbox: emitter}, nil
}

// PlaceCreated signals a new place pending review.
func (n *Notifier) PlaceCreated(ctx context.Context, actor auth.Actor, place *models.Place) error {
	if place == nil {
		return fmt.Errorf("place required")
	}
	return n.emit(ctx, actor, place.ID, enums.EventPlaceCreated, payloads.PlaceCreatedEvent{
		PlaceID:   place.ID,
		Slug:      place.Slug,
		Name:      place.Name,
		Status:    string(place.Status),
		OwnerID:   place.OwnerID,
		CreatedBy: actor.ID,
	})
}

// PlaceResubmitted signals that an owner edit sent an approved place back to review.
func (n *Notifier) PlaceResubmitted(ctx context.Context, actor auth.Actor, place *models.Place, previous enums.PlaceStatus) error {
	if place == nil {
		return fmt.Errorf("place required")
	}
	return n.emit(ctx, actor, place.ID, enums.EventPlaceResubmitted, payloads.PlaceResubmittedEvent{
		PlaceID:        place.ID,
		Slug:           place.Slug,
		Name:           place.Name,
		PreviousStatus: string(previous),
		OwnerID:        actor.ID,
	})
}

func (n *Notifier) emit(ctx context.Context, actor auth.Actor, placeID uuid.UUID, eventType enums.OutboxEventType, data any) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregatePlace,
		AggregateID:   placeID,
		Data:          data,
	}
	if actor.ID != uuid.Nil {
		event.Actor = &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)}
	}
	return n.db.WithTx(ctx, func(tx *gorm.DB) error {
		return n.outbox.Emit(ctx, tx, event)
	})
}
