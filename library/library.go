// Package library persists snap documents for the "recents" list: save,
// load, list and delete by id. Documents are stored as exported project
// files, with oversized inline assets dropped before they are written.
package library

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"codesnap/snap"
	"codesnap/snapfile"
)

// ErrNotFound is returned for ids the store does not hold.
var ErrNotFound = errors.New("library: snap not found")

// Store keeps documents by id. Save with an empty id creates a new entry and
// returns its id.
type Store interface {
	Save(ctx context.Context, id string, s *snap.Snap) (string, error)
	Load(ctx context.Context, id string) (*snap.Snap, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

// Summary is one row of the recents list.
type Summary struct {
	ID        string
	Title     string
	Aspect    string
	Width     int
	Height    int
	Elements  int
	Size      int
	UpdatedAt time.Time
}

// NewID returns a fresh store id.
func NewID() string {
	return uuid.NewString()
}

// prepare copies s, caps its assets and encodes it.
func prepare(s *snap.Snap, p snapfile.Policy) ([]byte, []snapfile.Dropped, error) {
	c := s.Clone()
	snap.Normalize(c)
	dropped := snapfile.CapAssets(c, p)
	data, err := snapfile.Export(c)
	if err != nil {
		return nil, nil, err
	}
	return data, dropped, nil
}

func summarize(id string, s *snap.Snap, size int, at time.Time) Summary {
	return Summary{
		ID:        id,
		Title:     s.Meta.Title,
		Aspect:    s.Meta.Aspect,
		Width:     s.Meta.Width,
		Height:    s.Meta.Height,
		Elements:  len(s.Elements),
		Size:      size,
		UpdatedAt: at,
	}
}
