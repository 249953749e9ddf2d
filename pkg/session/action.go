package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

// ActionType names one action in the closed set the reducer accepts.
type ActionType string

const (
	TypeStartSession      ActionType = "start_session"
	TypeEndSession        ActionType = "end_session"
	TypeAdvanceTurn       ActionType = "advance_turn"
	TypeRetreatTurn       ActionType = "retreat_turn"
	TypeAddCombatant      ActionType = "add_combatant"
	TypeAddCombatants     ActionType = "add_combatants"
	TypeRemoveCombatant   ActionType = "remove_combatant"
	TypeUpdateCombatant   ActionType = "update_combatant"
	TypeReorderCombatants ActionType = "reorder_combatants"
	TypeImportState       ActionType = "import_state"
)

// Action is a member of the closed action set. Anything else handed to the
// reducer is a caller bug, not user input.
type Action interface {
	actionType() ActionType
}

// StartSession resolves rolled initiative, sorts the roster and begins
// round 1.
type StartSession struct{}

// EndSession returns to setup and clears the roster.
type EndSession struct{}

// AdvanceTurn moves to the next turn, wrapping into a new round after the
// last combatant.
type AdvanceTurn struct{}

// RetreatTurn moves to the previous turn, wrapping back a round. It cannot
// go before the first turn of the first round.
type RetreatTurn struct{}

// AddCombatant appends one combatant and renumbers the roster.
type AddCombatant struct {
	Combatant combatant.Combatant
}

// AddCombatants appends a batch and renumbers the roster once.
type AddCombatants struct {
	Combatants []combatant.Combatant
}

// RemoveCombatant drops the combatant with the given ID. No renumbering
// pass runs on removal.
type RemoveCombatant struct {
	ID uuid.UUID
}

// UpdateCombatant replaces the roster entry with a matching ID in place.
// A missing ID is a no-op.
type UpdateCombatant struct {
	Combatant combatant.Combatant
}

// ReorderCombatants replaces the roster wholesale with the given order.
type ReorderCombatants struct {
	Combatants []combatant.Combatant
}

// ImportState replaces the entire session with a validated snapshot.
type ImportState struct {
	Session Session
}

func (StartSession) actionType() ActionType      { return TypeStartSession }
func (EndSession) actionType() ActionType        { return TypeEndSession }
func (AdvanceTurn) actionType() ActionType       { return TypeAdvanceTurn }
func (RetreatTurn) actionType() ActionType       { return TypeRetreatTurn }
func (AddCombatant) actionType() ActionType      { return TypeAddCombatant }
func (AddCombatants) actionType() ActionType     { return TypeAddCombatants }
func (RemoveCombatant) actionType() ActionType   { return TypeRemoveCombatant }
func (UpdateCombatant) actionType() ActionType   { return TypeUpdateCombatant }
func (ReorderCombatants) actionType() ActionType { return TypeReorderCombatants }
func (ImportState) actionType() ActionType       { return TypeImportState }

// actionEnvelope is the JSON wire shape for dispatched actions.
type actionEnvelope struct {
	Type       ActionType            `json:"type"`
	Combatant  *combatant.Combatant  `json:"combatant,omitempty"`
	Combatants []combatant.Combatant `json:"combatants,omitempty"`
	ID         uuid.UUID             `json:"id"`
	Session    *Session              `json:"session,omitempty"`
}

// ParseAction decodes a JSON action envelope into a typed action.
func ParseAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch env.Type {
	case TypeStartSession:
		return StartSession{}, nil
	case TypeEndSession:
		return EndSession{}, nil
	case TypeAdvanceTurn:
		return AdvanceTurn{}, nil
	case TypeRetreatTurn:
		return RetreatTurn{}, nil
	case TypeAddCombatant:
		if env.Combatant == nil {
			return nil, fmt.Errorf("%s action requires a combatant", env.Type)
		}
		return AddCombatant{Combatant: *env.Combatant}, nil
	case TypeAddCombatants:
		return AddCombatants{Combatants: env.Combatants}, nil
	case TypeRemoveCombatant:
		if env.ID == uuid.Nil {
			return nil, fmt.Errorf("%s action requires an id", env.Type)
		}
		return RemoveCombatant{ID: env.ID}, nil
	case TypeUpdateCombatant:
		if env.Combatant == nil {
			return nil, fmt.Errorf("%s action requires a combatant", env.Type)
		}
		return UpdateCombatant{Combatant: *env.Combatant}, nil
	case TypeReorderCombatants:
		return ReorderCombatants{Combatants: env.Combatants}, nil
	case TypeImportState:
		if env.Session == nil {
			return nil, fmt.Errorf("%s action requires a session", env.Type)
		}
		return ImportState{Session: *env.Session}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, env.Type)
	}
}
