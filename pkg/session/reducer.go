package session

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

var (
	// ErrInvalidAction marks an action outside the defined set. It is a
	// caller/reducer contract violation and must not be swallowed.
	ErrInvalidAction = errors.New("invalid session action")

	// ErrEmptyRoster is returned when starting an encounter with no
	// combatants.
	ErrEmptyRoster = errors.New("cannot start an encounter with no combatants")

	// ErrNotActive is returned for turn transitions while no encounter
	// is running.
	ErrNotActive = errors.New("no active encounter")

	// ErrAlreadyActive is returned for a start while an encounter is
	// already running.
	ErrAlreadyActive = errors.New("encounter is already running")
)

// Reducer applies actions to sessions. Apply is a pure function of its
// inputs except for the injected die roll, which fires only during a start
// and exactly once per unresolved combatant.
type Reducer struct {
	Roll Roller
}

// NewReducer creates a reducer. A nil roller falls back to the d20 default.
func NewReducer(roll Roller) Reducer {
	if roll == nil {
		roll = D20
	}
	return Reducer{Roll: roll}
}

// Apply produces the next session state for an action. The given state is
// never mutated.
func (r Reducer) Apply(s Session, a Action) (Session, error) {
	switch act := a.(type) {
	case StartSession:
		return r.start(s)
	case EndSession:
		return end(s)
	case AdvanceTurn:
		return advance(s)
	case RetreatTurn:
		return retreat(s)
	case AddCombatant:
		return add(s, act.Combatant)
	case AddCombatants:
		return addBatch(s, act.Combatants)
	case RemoveCombatant:
		return remove(s, act)
	case UpdateCombatant:
		return update(s, act.Combatant)
	case ReorderCombatants:
		return reorder(s, act.Combatants)
	case ImportState:
		return act.Session, nil
	default:
		return Session{}, fmt.Errorf("%w: %T", ErrInvalidAction, a)
	}
}

func (r Reducer) start(s Session) (Session, error) {
	if s.Active {
		return Session{}, ErrAlreadyActive
	}
	if len(s.Combatants) == 0 {
		return Session{}, ErrEmptyRoster
	}

	roster := cloneRoster(s.Combatants)
	for i, c := range roster {
		roster[i] = resolveInitiative(c, r.Roll)
	}
	// Stable sort: combatants tied on initiative keep their prior
	// relative order.
	slices.SortStableFunc(roster, func(a, b combatant.Combatant) int {
		return cmp.Compare(b.InitiativeValue, a.InitiativeValue)
	})

	s.Combatants = roster
	s.Active = true
	s.Round = 1
	s.TurnIndex = 1
	return s, nil
}

// end is destructive: leaving combat discards the roster entirely.
func end(s Session) (Session, error) {
	if !s.Active {
		return Session{}, ErrNotActive
	}
	s.Active = false
	s.Round = 0
	s.TurnIndex = 0
	s.Combatants = make([]combatant.Combatant, 0)
	return s, nil
}

func advance(s Session) (Session, error) {
	if !s.Active {
		return Session{}, ErrNotActive
	}
	if s.TurnIndex < len(s.Combatants) {
		s.TurnIndex++
		return s, nil
	}
	s.TurnIndex = 1
	s.Round++
	return s, nil
}

func retreat(s Session) (Session, error) {
	if !s.Active {
		return Session{}, ErrNotActive
	}
	if s.Round == 1 && s.TurnIndex == 1 {
		// cannot go before the first turn of the first round
		return s, nil
	}
	if s.TurnIndex == 1 {
		s.TurnIndex = len(s.Combatants)
		s.Round--
		return s, nil
	}
	s.TurnIndex--
	return s, nil
}

func add(s Session, c combatant.Combatant) (Session, error) {
	return addBatch(s, []combatant.Combatant{c})
}

func addBatch(s Session, cs []combatant.Combatant) (Session, error) {
	roster := make([]combatant.Combatant, 0, len(s.Combatants)+len(cs))
	roster = append(roster, s.Combatants...)
	roster = append(roster, cs...)
	s.Combatants = Renumber(roster)
	return s, nil
}

func remove(s Session, act RemoveCombatant) (Session, error) {
	roster := make([]combatant.Combatant, 0, len(s.Combatants))
	for _, c := range s.Combatants {
		if c.ID != act.ID {
			roster = append(roster, c)
		}
	}
	s.Combatants = roster
	// Combat cannot continue with nobody in it.
	if s.Active && len(roster) == 0 {
		s.Active = false
		s.Round = 0
		s.TurnIndex = 0
		return s, nil
	}
	// Keep the turn pointer in range if the roster shrank beneath it.
	if s.Active && s.TurnIndex > len(roster) {
		s.TurnIndex = len(roster)
	}
	return s, nil
}

func update(s Session, c combatant.Combatant) (Session, error) {
	roster := cloneRoster(s.Combatants)
	for i := range roster {
		if roster[i].ID == c.ID {
			roster[i] = c
			break
		}
	}
	s.Combatants = roster
	return s, nil
}

func reorder(s Session, cs []combatant.Combatant) (Session, error) {
	s.Combatants = cloneRoster(cs)
	return s, nil
}
