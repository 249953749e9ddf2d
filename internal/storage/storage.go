package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/encounter-tracker/pkg/library"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage persists encounter sessions and the creature template library.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations
	SaveSession(ctx context.Context, s session.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (session.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Template library operations
	ListCategories(ctx context.Context) ([]library.Category, error)
	PutCategory(ctx context.Context, c library.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCreatures(ctx context.Context) ([]library.CreatureTemplate, error)
	PutCreature(ctx context.Context, t library.CreatureTemplate) error
	DeleteCreature(ctx context.Context, id uuid.UUID) error

	// LibrarySnapshot assembles the full library for export/signing.
	LibrarySnapshot(ctx context.Context) (library.Snapshot, error)
	// RestoreLibrary replaces the stored library with a validated
	// imported snapshot.
	RestoreLibrary(ctx context.Context, snap library.Snapshot) error
}
