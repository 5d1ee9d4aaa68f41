package media

import (
	"time"

	"github.com/google/uuid"
)

// StagingCreatedAt returns when a staging id was minted. Only UUIDv7 ids carry
// a timestamp; any other value reports false.
func StagingCreatedAt(stagingID string) (time.Time, bool) {
	id, err := uuid.Parse(stagingID)
	if err != nil || id.Version() != 7 {
		return time.Time{}, false
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec).UTC(), true
}
