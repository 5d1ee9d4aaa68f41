package payloads

import "github.com/google/uuid"

// PlaceCreatedEvent asks administrators to review a newly created place.
type PlaceCreatedEvent struct {
	PlaceID   uuid.UUID  `json:"placeId"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	CreatedBy uuid.UUID  `json:"createdBy"`
}

// PlaceResubmittedEvent signals that an owner edit sent an active place back to review.
type PlaceResubmittedEvent struct {
	PlaceID        uuid.UUID `json:"placeId"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	PreviousStatus string    `json:"previousStatus"`
	OwnerID        uuid.UUID `json:"ownerId"`
}
