package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

// Session is the aggregate state for one combat encounter: the roster plus
// the round/turn pointers. TurnIndex is 1-based into Combatants while the
// encounter is active and 0 otherwise.
type Session struct {
	ID         uuid.UUID             `json:"id"`
	Active     bool                  `json:"active"`
	Round      int                   `json:"round"`
	TurnIndex  int                   `json:"turn_index"`
	Combatants []combatant.Combatant `json:"combatants"`
}

// New creates an empty, inactive session.
func New() Session {
	return Session{
		ID:         uuid.New(),
		Combatants: make([]combatant.Combatant, 0),
	}
}

// Validate checks the aggregate invariants. It is also the schema check the
// import pipeline runs before handing a decoded session back to the caller.
func (s Session) Validate() error {
	var errs []error
	if s.Active {
		if s.Round < 1 {
			errs = append(errs, fmt.Errorf("active session must have round >= 1, got %d", s.Round))
		}
		if s.TurnIndex < 1 || s.TurnIndex > len(s.Combatants) {
			errs = append(errs, fmt.Errorf("active session turn index %d out of range [1, %d]", s.TurnIndex, len(s.Combatants)))
		}
		for _, c := range s.Combatants {
			if c.InitiativeKind == combatant.InitiativeRoll {
				errs = append(errs, fmt.Errorf("combatant %q has unresolved initiative in an active session", c.Name))
			}
		}
	} else {
		if s.Round != 0 {
			errs = append(errs, fmt.Errorf("inactive session must have round 0, got %d", s.Round))
		}
		if s.TurnIndex != 0 {
			errs = append(errs, fmt.Errorf("inactive session must have turn index 0, got %d", s.TurnIndex))
		}
	}
	for _, c := range s.Combatants {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("combatant %q: %w", c.Name, err))
		}
	}
	return errors.Join(errs...)
}

// cloneRoster copies the combatant slice so a transition never aliases the
// roster of the state it was given.
func cloneRoster(cs []combatant.Combatant) []combatant.Combatant {
	out := make([]combatant.Combatant, len(cs))
	copy(out, cs)
	return out
}
