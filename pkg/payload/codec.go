package payload

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the rendering snapshot carried by a notification event.
// It is captured when the event is produced so dispatch never needs to
// re-read the content row, and staleness is detectable via ContentVersion.
type Snapshot struct {
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	ContentID      uint64            `json:"content_id"`
	ContentVersion int               `json:"content_version"`
	Locales        map[string]Titles `json:"locales,omitempty"`
}

// Titles holds the localized variant of a snapshot.
type Titles struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Encode serialises a snapshot to the opaque form stored on the event row.
func Encode(s *Snapshot) (string, error) {
	if s == nil {
		return "", fmt.Errorf("payload: nil snapshot")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("payload: encode snapshot: %w", err)
	}
	return string(b), nil
}

// Decode parses the opaque payload column back into a snapshot.
func Decode(raw string) (*Snapshot, error) {
	if raw == "" {
		return &Snapshot{}, nil
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("payload: decode snapshot: %w", err)
	}
	return &s, nil
}
