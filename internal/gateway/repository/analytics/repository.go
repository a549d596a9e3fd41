package analytics

import (
	"context"
	"time"
)

// Profile is the part of a user profile kept for aggregate statistics.
type Profile struct {
	State      string `json:"state"`
	Age        string `json:"age"`
	Occupation string `json:"occupation"`
	Income     string `json:"income"`
	Category   string `json:"category"`
	Gender     string `json:"gender"`
}

// Event is one served recommendation.
type Event struct {
	ID           string    `json:"_id"`
	Profile      Profile   `json:"profile"`
	SchemesFound int       `json:"schemesFound"`
	TopSchemes   []string  `json:"topSchemes"`
	Timestamp    time.Time `json:"timestamp"`
}

// Count is one bucket of a group-by aggregate.
type Count struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

// Summary is the admin dashboard payload.
type Summary struct {
	TotalSearches  int     `json:"totalSearches"`
	TopStates      []Count `json:"topStates"`
	TopOccupations []Count `json:"topOccupations"`
	RecentSearches []Event `json:"recentSearches"`
}

// SummaryLimit is the length of every list in a Summary.
const SummaryLimit = 5

// Store persists recommendation events.
type Store interface {
	Add(ctx context.Context, ev Event) error
	Summary(ctx context.Context) (Summary, error)
}
