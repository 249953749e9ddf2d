package session

import (
	"math/rand"

	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

// Roller produces a single d20 result in [1, 20]. It is the only source of
// randomness in the package; tests substitute a fixed sequence to make
// StartSession reproducible.
type Roller func() int

// D20 is the default roller.
func D20() int {
	return rand.Intn(20) + 1
}

// resolveInitiative converts a roll-kind combatant into a fixed score of
// d20 + modifier, drawing the die exactly once. The result is clamped at
// zero so a large negative modifier cannot produce a negative fixed score.
// Fixed combatants pass through unchanged.
func resolveInitiative(c combatant.Combatant, roll Roller) combatant.Combatant {
	if c.InitiativeKind != combatant.InitiativeRoll {
		return c
	}
	v := roll() + c.InitiativeValue
	if v < 0 {
		v = 0
	}
	c.InitiativeKind = combatant.InitiativeFixed
	c.InitiativeValue = v
	return c
}
