package types

import "strings"

// Social groups the optional social network links of a place.
type Social struct {
	Facebook  *string `json:"facebook,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty"`
	TikTok    *string `json:"tiktok,omitempty"`
}

// Normalized trims every link and drops blank ones.
func (s Social) Normalized() Social {
	return Social{
		Facebook:  trimmedOrNil(s.Facebook),
		Instagram: trimmedOrNil(s.Instagram),
		Twitter:   trimmedOrNil(s.Twitter),
		LinkedIn:  trimmedOrNil(s.LinkedIn),
		TikTok:    trimmedOrNil(s.TikTok),
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
