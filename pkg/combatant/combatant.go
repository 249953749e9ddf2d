package combatant

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// InitiativeKind distinguishes a resolved turn-order score from a
// modifier that still needs a die roll.
type InitiativeKind string

const (
	// InitiativeFixed means InitiativeValue is the final turn-order score.
	InitiativeFixed InitiativeKind = "fixed"
	// InitiativeRoll means InitiativeValue is a signed modifier applied
	// to a d20 roll when the encounter starts.
	InitiativeRoll InitiativeKind = "roll"
)

// Combatant is one participant in an encounter, either added ad hoc or
// instantiated from a creature template.
type Combatant struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	InitiativeKind  InitiativeKind `json:"initiative_kind"`
	InitiativeValue int            `json:"initiative_value"`
	HP              int            `json:"hp"`
	MaxHP           int            `json:"max_hp"`
}

// New creates a combatant with a fresh ID.
func New(name string, kind InitiativeKind, value, hp, maxHP int) Combatant {
	return Combatant{
		ID:              uuid.New(),
		Name:            name,
		InitiativeKind:  kind,
		InitiativeValue: value,
		HP:              hp,
		MaxHP:           maxHP,
	}
}

// FieldError is a validation failure on a single combatant field, so
// callers can surface it beside the offending input.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks all field-level rules and returns every violation,
// joined, rather than stopping at the first.
func (c Combatant) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, FieldError{Field: "name", Reason: "name is required"})
	}
	switch c.InitiativeKind {
	case InitiativeFixed:
		if c.InitiativeValue < 0 {
			errs = append(errs, FieldError{Field: "initiative_value", Reason: "fixed initiative cannot be negative"})
		}
	case InitiativeRoll:
		// any sign is fine for a modifier
	default:
		errs = append(errs, FieldError{Field: "initiative_kind", Reason: fmt.Sprintf("unknown initiative kind %q", c.InitiativeKind)})
	}
	if c.HP < 0 {
		errs = append(errs, FieldError{Field: "hp", Reason: "hp cannot be negative"})
	}
	if c.MaxHP < 0 {
		errs = append(errs, FieldError{Field: "max_hp", Reason: "max hp cannot be negative"})
	}
	if c.HP >= 0 && c.MaxHP >= 0 && c.HP > c.MaxHP {
		errs = append(errs, FieldError{Field: "hp", Reason: "hp cannot exceed max hp"})
	}
	return errors.Join(errs...)
}
