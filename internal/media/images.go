// Package media reconciles place imagery: default logo/cover resolution,
// relocation of staged uploads to a place's permanent area, and staged uploads.
package media

import "strings"

// ImageSet is the resolved imagery of a place.
type ImageSet struct {
	Logo    *string
	Cover   *string
	Gallery []string
}

// Candidates is the imagery supplied by a create or update request. Nil and
// blank values both mean "not supplied".
type Candidates struct {
	Logo    *string
	Cover   *string
	Gallery []string
}

// ResolveImages applies the logo/cover defaulting rules. previous is nil on create.
//
// Gallery: a non-empty candidate gallery replaces the previous one, otherwise
// the previous gallery is kept. Logo and cover are resolved independently:
// explicit value, then the first entry of a newly supplied gallery, then the
// previously stored value, then the first entry of the resolved gallery.
func ResolveImages(c Candidates, previous *ImageSet) ImageSet {
	supplied := cleanGallery(c.Gallery)

	var gallery []string
	switch {
	case len(supplied) > 0:
		gallery = supplied
	case previous != nil:
		gallery = cleanGallery(previous.Gallery)
	}
	if gallery == nil {
		gallery = []string{}
	}

	var prevLogo, prevCover *string
	if previous != nil {
		prevLogo, prevCover = previous.Logo, previous.Cover
	}

	return ImageSet{
		Logo:    resolveSlot(c.Logo, supplied, prevLogo, gallery),
		Cover:   resolveSlot(c.Cover, supplied, prevCover, gallery),
		Gallery: gallery,
	}
}

func resolveSlot(explicit *string, supplied []string, previous *string, gallery []string) *string {
	if v := nonBlank(explicit); v != nil {
		return v
	}
	if len(supplied) > 0 {
		return stringPtr(supplied[0])
	}
	if v := nonBlank(previous); v != nil {
		return v
	}
	if len(gallery) > 0 {
		return stringPtr(gallery[0])
	}
	return nil
}

func cleanGallery(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func nonBlank(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringPtr(v string) *string {
	return &v
}
