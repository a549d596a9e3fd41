package history

import (
	"context"
	"errors"
	"time"
)

// Limit is how many entries List returns at most.
const Limit = 20

var ErrUserRequired = errors.New("history: user id is required")

// Profile is the subset of the user profile shown in the history view.
type Profile struct {
	State      string `json:"state"`
	Age        string `json:"age"`
	Occupation string `json:"occupation"`
	Income     string `json:"income"`
	Category   string `json:"category"`
}

// Entry records one recommendation served to a signed-in user.
type Entry struct {
	ID           string    `json:"_id"`
	UserID       string    `json:"userId"`
	Timestamp    time.Time `json:"timestamp"`
	Profile      Profile   `json:"profile"`
	SchemesFound int       `json:"schemesFound"`
	TopSchemes   []string  `json:"topSchemes"`
}

type Store interface {
	Add(ctx context.Context, e Entry) error
	// List returns the newest Limit entries of userID, newest first.
	List(ctx context.Context, userID string) ([]Entry, error)
}
