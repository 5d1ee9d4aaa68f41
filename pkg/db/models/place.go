package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/types"
)

// Place is a published or pending listing of a local business or association.
type Place struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Slug        string            `gorm:"column:slug;not null;uniqueIndex:places_slug_key"`
	Name        string            `gorm:"column:name;not null"`
	Kind        enums.PlaceKind   `gorm:"column:kind;not null"`
	Status      enums.PlaceStatus `gorm:"column:status;not null;index"`
	OwnerID     *uuid.UUID        `gorm:"column:owner_id;type:uuid;index"`
	Summary     *string           `gorm:"column:summary"`
	Description *string           `gorm:"column:description"`
	Email       *string           `gorm:"column:email"`
	Phone       *string           `gorm:"column:phone"`
	Website     *string           `gorm:"column:website"`
	Street      *string           `gorm:"column:street"`
	PostalCode  *string           `gorm:"column:postal_code"`
	City        *string           `gorm:"column:city"`
	Latitude    *float64          `gorm:"column:latitude"`
	Longitude   *float64          `gorm:"column:longitude"`

	Social      datatypes.JSONType[types.Social] `gorm:"column:social"`
	LogoURL     *string                          `gorm:"column:logo_url"`
	CoverURL    *string                          `gorm:"column:cover_url"`
	GalleryURLs datatypes.JSONSlice[string]      `gorm:"column:gallery_urls"`

	// RawSchedule keeps the schedule exactly as last submitted.
	RawSchedule datatypes.JSON `gorm:"column:raw_schedule"`

	OpeningHours []PlaceOpeningHour `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Place) TableName() string { return "places" }

func (p *Place) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PlaceOpeningHour is one normalized schedule row.
type PlaceOpeningHour struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PlaceID   uuid.UUID       `gorm:"column:place_id;type:uuid;not null;index"`
	DayOfWeek enums.DayOfWeek `gorm:"column:day_of_week;not null"`
	OpenTime  *string         `gorm:"column:open_time"`
	CloseTime *string         `gorm:"column:close_time"`
	IsClosed  bool            `gorm:"column:is_closed;not null;default:false"`
	Position  int             `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (PlaceOpeningHour) TableName() string { return "place_opening_hours" }

func (h *PlaceOpeningHour) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
