// Package storage provides a SQLite index of project samples.
package storage

import (
	"time"

	"github.com/user/peppy/internal/model"
)

// ListOptions configures sample listing.
type ListOptions struct {
	// Protocol filters by protocol (empty or "*" = all).
	Protocol string
	// ActiveOnly skips samples whose execution toggle is off.
	ActiveOnly bool
	// Status filters by last recorded status (empty = all).
	Status string
	// Limit restricts the number of results (0 = no limit).
	Limit int
}

// IndexedSample is a sample row as stored in the index.
type IndexedSample struct {
	Sample    *model.Sample
	Status    string
	IndexedAt time.Time
}

// Storage defines the interface for sample index persistence.
type Storage interface {
	// Index maintenance
	Rebuild(project string, samples []*model.Sample) error
	SetStatus(project, name, status string) error

	// Queries
	ListSamples(project string, opts ListOptions) ([]*IndexedSample, error)
	GetSample(project, name string) (*IndexedSample, error)
	Count(project string) (int, error)

	// Path returns the location of the index.
	Path() string
	// Close releases resources.
	Close() error
}

var _ Storage = (*Index)(nil)
