package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EntityType distinguishes the two kinds of scored units.
type EntityType string

const (
	EntityPatrol EntityType = "patrol"
	EntityTroop  EntityType = "troop"
)

func (t EntityType) Valid() bool {
	return t == EntityPatrol || t == EntityTroop
}

// Entity is a patrol or troop being scored.
type Entity struct {
	ID          string     `json:"id"`
	Type        EntityType `json:"type"`
	TroopNumber string     `json:"troop_number"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Label renders the display name for an entity. Names that merely repeat the
// troop number ("13", "T13", "Troop 13") are collapsed so lists don't read
// "Troop 13 - Troop 13".
func (e Entity) Label() string {
	num := strings.TrimSpace(e.TroopNumber)
	name := strings.TrimSpace(e.Name)

	redundant := false
	if num != "" {
		re := regexp.MustCompile(`(?i)^(t|tr|troop)?\s*` + regexp.QuoteMeta(num) + `$`)
		redundant = re.MatchString(name)
	}

	if e.Type == EntityTroop {
		base := "Troop " + num
		if redundant || name == "" {
			return base
		}
		return base + " - " + name
	}

	base := "T" + num
	if redundant || name == "" {
		return base
	}
	return base + " " + name
}

var gameNumRe = regexp.MustCompile(`(\d+)`)

// GameTitle formats a station name for lists: "Game 3. Tug of War" when the
// station id carries a number, the raw name otherwise.
func GameTitle(s Station) string {
	if s.Name == "" {
		return ""
	}
	if m, _ := regexp.MatchString(`(?i)^(Game|Exhibition|p\d)`, s.Name); m {
		return s.Name
	}
	if m := gameNumRe.FindString(s.ID); m != "" {
		return fmt.Sprintf("Game %s. %s", m, s.Name)
	}
	return s.Name
}
