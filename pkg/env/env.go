package env

import (
	"os"
	"strings"
)

// First returns the first non-blank value among keys, or "" when none is set.
// Binaries use it before config loading, when only the raw environment is
// available.
func First(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}
