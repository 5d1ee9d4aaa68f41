package places

import (
	"time"

	"github.com/google/uuid"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/internal/schedule"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/db/models"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/types"
)

// CreateInput captures a new place submission. OpeningHours nil means no
// schedule was submitted.
type CreateInput struct {
	Name         string
	Kind         enums.PlaceKind
	Summary      *string
	Description  *string
	Email        *string
	Phone        *string
	Website      *string
	Street       *string
	PostalCode   *string
	City         *string
	Latitude     *float64
	Longitude    *float64
	Social       *types.Social
	LogoURL      *string
	CoverURL     *string
	Gallery      []string
	OpeningHours []schedule.DayInput
	StagingIDs   []string
	// ForClaim creates an ACTIVE, unowned place. Privileged actors only.
	ForClaim bool
}

// UpdateInput is a partial update: nil fields are left untouched.
// OpeningHours, when set, fully replaces the schedule (an empty list clears it).
type UpdateInput struct {
	Name         *string
	Kind         *enums.PlaceKind
	Status       *enums.PlaceStatus
	Summary      *string
	Description  *string
	Email        *string
	Phone        *string
	Website      *string
	Street       *string
	PostalCode   *string
	City         *string
	Latitude     *float64
	Longitude    *float64
	Social       *types.Social
	LogoURL      *string
	CoverURL     *string
	Gallery      *[]string
	OpeningHours *[]schedule.DayInput
}

// ListFilter narrows List results.
type ListFilter struct {
	Status *enums.PlaceStatus
	Kind   *enums.PlaceKind
	Mine   bool
	Limit  int
	Cursor string
}

// OpeningHourDTO is one canonical schedule row.
type OpeningHourDTO struct {
	DayOfWeek enums.DayOfWeek `json:"day_of_week"`
	OpenTime  *string         `json:"open_time"`
	CloseTime *string         `json:"close_time"`
	IsClosed  bool            `json:"is_closed"`
}

// PlaceDTO is the API representation of a place.
type PlaceDTO struct {
	ID           uuid.UUID         `json:"id"`
	Slug         string            `json:"slug"`
	Name         string            `json:"name"`
	Kind         enums.PlaceKind   `json:"kind"`
	Status       enums.PlaceStatus `json:"status"`
	OwnerID      *uuid.UUID        `json:"owner_id"`
	Summary      *string           `json:"summary,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Email        *string           `json:"email,omitempty"`
	Phone        *string           `json:"phone,omitempty"`
	Website      *string           `json:"website,omitempty"`
	Street       *string           `json:"street,omitempty"`
	PostalCode   *string           `json:"postal_code,omitempty"`
	City         *string           `json:"city,omitempty"`
	Latitude     *float64          `json:"latitude,omitempty"`
	Longitude    *float64          `json:"longitude,omitempty"`
	Social       types.Social      `json:"social"`
	LogoURL      *string           `json:"logo_url"`
	CoverURL     *string           `json:"cover_url"`
	Gallery      []string          `json:"gallery"`
	OpeningHours []OpeningHourDTO  `json:"opening_hours"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Result is returned by mutations. Warnings lists storage faults that did not
// prevent the mutation.
type Result struct {
	Place    *PlaceDTO `json:"place,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// ListResult is one page of places.
type ListResult struct {
	Items      []PlaceDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps the persisted place into a DTO.
func FromModel(m *models.Place) *PlaceDTO {
	if m == nil {
		return nil
	}

	dto := &PlaceDTO{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Kind:        m.Kind,
		Status:      m.Status,
		OwnerID:     m.OwnerID,
		Summary:     m.Summary,
		Description: m.Description,
		Email:       m.Email,
		Phone:       m.Phone,
		Website:     m.Website,
		Street:      m.Street,
		PostalCode:  m.PostalCode,
		City:        m.City,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Social:      m.Social.Data(),
		LogoURL:     m.LogoURL,
		CoverURL:    m.CoverURL,
		Gallery:     append([]string{}, m.GalleryURLs...),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	dto.OpeningHours = make([]OpeningHourDTO, 0, len(m.OpeningHours))
	for _, h := range m.OpeningHours {
		dto.OpeningHours = append(dto.OpeningHours, OpeningHourDTO{
			DayOfWeek: h.DayOfWeek,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			IsClosed:  h.IsClosed,
		})
	}

	return dto
}

func hoursFromEntries(placeID uuid.UUID, entries []schedule.Entry) []models.PlaceOpeningHour {
	rows := make([]models.PlaceOpeningHour, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, models.PlaceOpeningHour{
			PlaceID:   placeID,
			DayOfWeek: e.DayOfWeek,
			OpenTime:  e.OpenTime,
			CloseTime: e.CloseTime,
			IsClosed:  e.IsClosed,
			Position:  i,
		})
	}
	return rows
}
