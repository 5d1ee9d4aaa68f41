package schedule

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Snapshot is the raw side channel persisted next to the canonical rows: the
// schedule exactly as submitted plus the gallery at that time.
type Snapshot struct {
	OpeningHours []DayInput `json:"openingHours"`
	Gallery      []string   `json:"gallery,omitempty"`
}

func EncodeSnapshot(snapshot Snapshot) (datatypes.JSON, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func DecodeSnapshot(raw datatypes.JSON) (Snapshot, error) {
	var snapshot Snapshot
	if len(raw) == 0 {
		return snapshot, nil
	}
	err := json.Unmarshal(raw, &snapshot)
	return snapshot, err
}
