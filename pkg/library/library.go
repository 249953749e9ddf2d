// Package library holds the reusable creature templates a user keeps on
// their device, grouped into categories. The export/import codec signs and
// validates whole-library snapshots so a collection can move between
// devices.
package library

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
)

// Category groups creature templates for display.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreatureTemplate is a reusable blueprint for a combatant.
type CreatureTemplate struct {
	ID              uuid.UUID                `json:"id"`
	Name            string                   `json:"name"`
	CategoryID      uuid.UUID                `json:"category_id"`
	InitiativeKind  combatant.InitiativeKind `json:"initiative_kind"`
	InitiativeValue int                      `json:"initiative_value"`
	HP              int                      `json:"hp"`
	MaxHP           int                      `json:"max_hp"`
}

// Snapshot is the full library contents, the payload shape signed by the
// export codec.
type Snapshot struct {
	Categories []Category         `json:"categories"`
	Creatures  []CreatureTemplate `json:"creatures"`
}

// Validate checks a snapshot before it is handed back to the caller of an
// import.
func (s Snapshot) Validate() error {
	var errs []error
	seen := make(map[uuid.UUID]bool, len(s.Categories))
	for _, cat := range s.Categories {
		if cat.ID == uuid.Nil {
			errs = append(errs, fmt.Errorf("category %q has no id", cat.Name))
		}
		if cat.Name == "" {
			errs = append(errs, fmt.Errorf("category %s has no name", cat.ID))
		}
		if seen[cat.ID] {
			errs = append(errs, fmt.Errorf("duplicate category id %s", cat.ID))
		}
		seen[cat.ID] = true
	}
	for _, tmpl := range s.Creatures {
		if err := tmpl.Validate(); err != nil {
			errs = append(errs, err)
		}
		if tmpl.CategoryID != uuid.Nil && !seen[tmpl.CategoryID] {
			errs = append(errs, fmt.Errorf("creature template %q references unknown category %s", tmpl.Name, tmpl.CategoryID))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the template's own fields. Category references are only
// checked snapshot-wide, since a single template cannot know the full
// category set.
func (t CreatureTemplate) Validate() error {
	var errs []error
	if t.ID == uuid.Nil {
		errs = append(errs, fmt.Errorf("creature template %q has no id", t.Name))
	}
	if err := t.instance().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("creature template %q: %w", t.Name, err))
	}
	return errors.Join(errs...)
}

func (t CreatureTemplate) instance() combatant.Combatant {
	return combatant.Combatant{
		Name:            t.Name,
		InitiativeKind:  t.InitiativeKind,
		InitiativeValue: t.InitiativeValue,
		HP:              t.HP,
		MaxHP:           t.MaxHP,
	}
}

// Instantiate creates a fresh combatant from a template. Each call assigns
// a new ID, so the same template can enter a roster many times.
func Instantiate(t CreatureTemplate) combatant.Combatant {
	c := t.instance()
	c.ID = uuid.New()
	return c
}
