package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
	"github.com/jwebster45206/encounter-tracker/pkg/library"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
)

func setupTestRedis(t *testing.T) *RedisStorage {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewRedisStorage("redis://"+mr.Addr(), logger)
	if err != nil {
		t.Fatalf("Failed to create redis storage: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close redis storage: %v", err)
		}
	})
	return store
}

func TestRedisStorage_SaveAndLoadSession(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	s := session.New()
	s.Combatants = []combatant.Combatant{
		combatant.New("Goblin 1", combatant.InitiativeFixed, 15, 7, 7),
		combatant.New("Goblin 2", combatant.InitiativeFixed, 8, 7, 7),
	}
	s.Active = true
	s.Round = 2
	s.TurnIndex = 1

	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := store.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded.ID != s.ID || loaded.Round != 2 || !loaded.Active {
		t.Errorf("loaded session does not match saved: %+v", loaded)
	}
	if len(loaded.Combatants) != 2 || loaded.Combatants[0].Name != "Goblin 1" {
		t.Errorf("roster did not round-trip: %+v", loaded.Combatants)
	}
}

func TestRedisStorage_LoadMissingSession(t *testing.T) {
	store := setupTestRedis(t)

	_, err := store.LoadSession(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	s := session.New()
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := store.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := store.LoadSession(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteSession(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestRedisStorage_LibraryRecords(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	cat := library.Category{ID: uuid.New(), Name: "Beasts"}
	if err := store.PutCategory(ctx, cat); err != nil {
		t.Fatalf("Failed to put category: %v", err)
	}

	wolf := library.CreatureTemplate{
		ID:              uuid.New(),
		Name:            "Wolf",
		CategoryID:      cat.ID,
		InitiativeKind:  combatant.InitiativeRoll,
		InitiativeValue: 2,
		HP:              11,
		MaxHP:           11,
	}
	bear := library.CreatureTemplate{
		ID:             uuid.New(),
		Name:           "Bear",
		CategoryID:     cat.ID,
		InitiativeKind: combatant.InitiativeFixed,
		HP:             34,
		MaxHP:          34,
	}
	for _, tmpl := range []library.CreatureTemplate{wolf, bear} {
		if err := store.PutCreature(ctx, tmpl); err != nil {
			t.Fatalf("Failed to put creature: %v", err)
		}
	}

	creatures, err := store.ListCreatures(ctx)
	if err != nil {
		t.Fatalf("Failed to list creatures: %v", err)
	}
	if len(creatures) != 2 {
		t.Fatalf("expected 2 creatures, got %d", len(creatures))
	}
	if creatures[0].Name != "Bear" || creatures[1].Name != "Wolf" {
		t.Errorf("expected creatures sorted by name, got %v", []string{creatures[0].Name, creatures[1].Name})
	}

	if err := store.DeleteCreature(ctx, wolf.ID); err != nil {
		t.Fatalf("Failed to delete creature: %v", err)
	}
	if err := store.DeleteCreature(ctx, wolf.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}

	if err := store.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}
	cats, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("Failed to list categories: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected empty category list, got %d", len(cats))
	}
}

func TestRedisStorage_SnapshotAndRestore(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	// Seed some records that the restore should wipe out.
	stale := library.Category{ID: uuid.New(), Name: "Stale"}
	if err := store.PutCategory(ctx, stale); err != nil {
		t.Fatalf("Failed to put category: %v", err)
	}

	cat := library.Category{ID: uuid.New(), Name: "Undead"}
	snap := library.Snapshot{
		Categories: []library.Category{cat},
		Creatures: []library.CreatureTemplate{
			{
				ID:              uuid.New(),
				Name:            "Skeleton",
				CategoryID:      cat.ID,
				InitiativeKind:  combatant.InitiativeRoll,
				InitiativeValue: 2,
				HP:              13,
				MaxHP:           13,
			},
		},
	}

	if err := store.RestoreLibrary(ctx, snap); err != nil {
		t.Fatalf("Failed to restore library: %v", err)
	}

	got, err := store.LibrarySnapshot(ctx)
	if err != nil {
		t.Fatalf("Failed to snapshot library: %v", err)
	}
	if len(got.Categories) != 1 || got.Categories[0].Name != "Undead" {
		t.Errorf("expected restored categories only, got %+v", got.Categories)
	}
	if len(got.Creatures) != 1 || got.Creatures[0].Name != "Skeleton" {
		t.Errorf("expected restored creatures only, got %+v", got.Creatures)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("restored snapshot should validate: %v", err)
	}
}
