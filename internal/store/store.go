// Package store persists classification runs to SQLite or PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mapforge/cartograph/internal/climate"
	"github.com/mapforge/cartograph/internal/projection"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = eris.New("store: run not found")

// Run is one persisted classification result with the parameters that
// produced it.
type Run struct {
	ID                 string            `json:"id"`
	VerticalResolution int               `json:"vertical_resolution"`
	Projection         projection.Config `json:"projection"`
	Summary            climate.Summary   `json:"summary"`
	Grid               *climate.Grid     `json:"grid,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Resolution int `json:"resolution,omitempty"`
	Limit      int `json:"limit,omitempty"`
	Offset     int `json:"offset,omitempty"`
}

// Store defines the persistence interface for classification runs. ListRuns
// returns runs without the grid payload; GetRun loads the full record.
type Store interface {
	CreateRun(ctx context.Context, run Run) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	DeleteRun(ctx context.Context, runID string) error

	Migrate(ctx context.Context) error
	Close() error
}
