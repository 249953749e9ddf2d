package library

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

func testSnapshot() Snapshot {
	cat := Category{ID: uuid.New(), Name: "Beasts"}
	return Snapshot{
		Categories: []Category{cat},
		Creatures: []CreatureTemplate{
			{
				ID:              uuid.New(),
				Name:            "Dire Wolf",
				CategoryID:      cat.ID,
				InitiativeKind:  combatant.InitiativeRoll,
				InitiativeValue: 2,
				HP:              37,
				MaxHP:           37,
			},
		},
	}
}

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr string
	}{
		{name: "valid", mutate: func(s *Snapshot) {}},
		{name: "empty snapshot is valid", mutate: func(s *Snapshot) { *s = Snapshot{} }},
		{
			name:    "category without id",
			mutate:  func(s *Snapshot) { s.Categories[0].ID = uuid.Nil },
			wantErr: "has no id",
		},
		{
			name:    "category without name",
			mutate:  func(s *Snapshot) { s.Categories[0].Name = "" },
			wantErr: "has no name",
		},
		{
			name:    "duplicate category",
			mutate:  func(s *Snapshot) { s.Categories = append(s.Categories, s.Categories[0]) },
			wantErr: "duplicate category",
		},
		{
			name:    "creature without id",
			mutate:  func(s *Snapshot) { s.Creatures[0].ID = uuid.Nil },
			wantErr: "has no id",
		},
		{
			name:    "creature with invalid fields",
			mutate:  func(s *Snapshot) { s.Creatures[0].HP = -1 },
			wantErr: "hp",
		},
		{
			name:    "creature referencing unknown category",
			mutate:  func(s *Snapshot) { s.Creatures[0].CategoryID = uuid.New() },
			wantErr: "unknown category",
		},
		{
			name:   "uncategorized creature is valid",
			mutate: func(s *Snapshot) { s.Creatures[0].CategoryID = uuid.Nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSnapshot()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid snapshot, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInstantiate(t *testing.T) {
	tmpl := testSnapshot().Creatures[0]

	a := Instantiate(tmpl)
	b := Instantiate(tmpl)

	if a.ID == uuid.Nil || b.ID == uuid.Nil {
		t.Fatal("instances must get fresh IDs")
	}
	if a.ID == b.ID {
		t.Error("two instances of the same template share an ID")
	}
	if a.ID == tmpl.ID {
		t.Error("instance must not reuse the template ID")
	}
	if a.Name != tmpl.Name || a.HP != tmpl.HP || a.InitiativeValue != tmpl.InitiativeValue {
		t.Errorf("instance fields do not match template: %+v", a)
	}
	if a.InitiativeKind != combatant.InitiativeRoll {
		t.Errorf("expected roll kind carried over, got %q", a.InitiativeKind)
	}
}
