package enums

import (
	"fmt"
	"strings"
)

// PlaceStatus is the publication state of a place record.
type PlaceStatus string

const (
	PlaceStatusDraft    PlaceStatus = "DRAFT"
	PlaceStatusPending  PlaceStatus = "PENDING"
	PlaceStatusActive   PlaceStatus = "ACTIVE"
	PlaceStatusInactive PlaceStatus = "INACTIVE"
	PlaceStatusArchived PlaceStatus = "ARCHIVED"
)

var validPlaceStatuses = []PlaceStatus{
	PlaceStatusDraft,
	PlaceStatusPending,
	PlaceStatusActive,
	PlaceStatusInactive,
	PlaceStatusArchived,
}

// String implements fmt.Stringer.
func (s PlaceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PlaceStatus.
func (s PlaceStatus) IsValid() bool {
	for _, candidate := range validPlaceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePlaceStatus converts raw input into a PlaceStatus, ignoring case.
func ParsePlaceStatus(value string) (PlaceStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPlaceStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid place status %q", value)
}

// PlaceKind classifies what a listing represents.
type PlaceKind string

const (
	PlaceKindBusiness    PlaceKind = "business"
	PlaceKindAssociation PlaceKind = "association"
	PlaceKindEvent       PlaceKind = "event"
)

var validPlaceKinds = []PlaceKind{
	PlaceKindBusiness,
	PlaceKindAssociation,
	PlaceKindEvent,
}

func (k PlaceKind) String() string {
	return string(k)
}

func (k PlaceKind) IsValid() bool {
	for _, candidate := range validPlaceKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParsePlaceKind(value string) (PlaceKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPlaceKinds {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid place kind %q", value)
}
