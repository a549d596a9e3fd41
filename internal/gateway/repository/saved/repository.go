package saved

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrAlreadySaved  = errors.New("saved: scheme already saved")
	ErrNotFound      = errors.New("saved: not found")
	ErrMissingFields = errors.New("saved: user id and scheme name are required")
)

// Scheme is a scheme bookmarked by a user. SchemeID is the slug of SchemeName and is unique
// per user.
type Scheme struct {
	ID         string          `json:"_id"`
	UserID     string          `json:"userId"`
	SchemeID   string          `json:"schemeId"`
	SchemeName string          `json:"schemeName"`
	SchemeData json.RawMessage `json:"schemeData,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

type Store interface {
	// Save stores s and returns it with id and timestamp filled. A second save of the same
	// (user, slug) fails with ErrAlreadySaved.
	Save(ctx context.Context, s Scheme) (Scheme, error)
	// List returns the saved schemes of userID, newest first.
	List(ctx context.Context, userID string) ([]Scheme, error)
	// Delete removes one entry by id and returns it.
	Delete(ctx context.Context, id string) (Scheme, error)
	Exists(ctx context.Context, userID, schemeID string) (bool, error)
}
