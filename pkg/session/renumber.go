package session

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

// Renumber reassigns the machine-managed numeric name suffixes across the
// whole roster. Combatants are grouped by base name (the name with any
// trailing " <integer>" stripped) preserving their relative order; groups of
// two or more are renamed "<base> 1" .. "<base> k", singletons are left
// untouched. The pass runs on every add but deliberately not on removal, so
// a numbered survivor keeps its suffix until the next add.
func Renumber(roster []combatant.Combatant) []combatant.Combatant {
	counts := make(map[string]int, len(roster))
	for _, c := range roster {
		counts[baseName(c.Name)]++
	}

	out := cloneRoster(roster)
	assigned := make(map[string]int, len(counts))
	for i, c := range out {
		base := baseName(c.Name)
		if counts[base] < 2 {
			continue
		}
		assigned[base]++
		out[i].Name = fmt.Sprintf("%s %d", base, assigned[base])
	}
	return out
}

// baseName strips a trailing " <integer>" suffix, if present.
func baseName(name string) string {
	i := strings.LastIndexByte(name, ' ')
	if i < 0 || i == len(name)-1 {
		return name
	}
	for _, r := range name[i+1:] {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:i]
}
