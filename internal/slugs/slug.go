package slugs

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MaxBaseLength caps the base slug so suffixed candidates stay readable.
const MaxBaseLength = 100

const fallbackPrefix = "place-"

var (
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Base derives the base slug of a name: diacritics are folded ("é" becomes
// "e"), the result is lower-cased, every run outside [a-z0-9] becomes one
// hyphen, and leading or trailing hyphens are trimmed. It returns "" when the
// name has no usable character.
func Base(name string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.TrimSpace(name)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	slug := nonAlnumRun.ReplaceAllString(strings.ToLower(b.String()), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxBaseLength {
		slug = strings.TrimRight(slug[:MaxBaseLength], "-")
	}
	return slug
}

// IsValid reports whether s is a well-formed slug.
func IsValid(s string) bool {
	return slugPattern.MatchString(s)
}

func fallbackBase() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fallbackPrefix + token[:8]
}
