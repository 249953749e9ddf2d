package combatant

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNew(t *testing.T) {
	c := New("Goblin", InitiativeRoll, 2, 7, 7)
	if c.ID == uuid.Nil {
		t.Error("expected a non-nil ID")
	}
	if c.Name != "Goblin" {
		t.Errorf("expected name Goblin, got %q", c.Name)
	}
	if c.InitiativeKind != InitiativeRoll {
		t.Errorf("expected roll kind, got %q", c.InitiativeKind)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected valid combatant, got %v", err)
	}
}

func TestCombatant_Validate(t *testing.T) {
	tests := []struct {
		name      string
		combatant Combatant
		wantField string
	}{
		{
			name:      "valid fixed",
			combatant: New("Orc", InitiativeFixed, 14, 15, 15),
		},
		{
			name:      "valid roll with negative modifier",
			combatant: New("Zombie", InitiativeRoll, -2, 22, 22),
		},
		{
			name:      "empty name",
			combatant: New("", InitiativeFixed, 10, 5, 5),
			wantField: "name",
		},
		{
			name:      "negative fixed initiative",
			combatant: New("Orc", InitiativeFixed, -1, 5, 5),
			wantField: "initiative_value",
		},
		{
			name:      "unknown kind",
			combatant: New("Orc", InitiativeKind("weird"), 0, 5, 5),
			wantField: "initiative_kind",
		},
		{
			name:      "negative hp",
			combatant: New("Orc", InitiativeFixed, 10, -3, 5),
			wantField: "hp",
		},
		{
			name:      "negative max hp",
			combatant: New("Orc", InitiativeFixed, 10, 0, -5),
			wantField: "max_hp",
		},
		{
			name:      "hp above max",
			combatant: New("Orc", InitiativeFixed, 10, 9, 5),
			wantField: "hp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.combatant.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error on field %s", tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantField+":") {
				t.Errorf("expected error mentioning %s, got %v", tt.wantField, err)
			}
		})
	}
}

func TestCombatant_ValidateJoinsAllFailures(t *testing.T) {
	c := Combatant{Name: "", InitiativeKind: InitiativeFixed, InitiativeValue: -4, HP: -1}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	var fe FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected a FieldError in the chain, got %v", err)
	}
	for _, field := range []string{"name:", "initiative_value:", "hp:"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected %s in %v", field, err)
		}
	}
}
