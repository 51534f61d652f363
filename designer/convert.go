// Package designer converts the hand-edited game definition files into the
// bundle format the camporee designer consumes: one component-based JSON per
// game, a camporee playlist, a preset palette, and a zip of the lot.
package designer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SourceField is a field as written in the source game files.
type SourceField struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Type         string   `json:"type,omitempty"`
	Kind         string   `json:"kind,omitempty"`
	Audience     string   `json:"audience,omitempty"`
	SortOrder    int      `json:"sortOrder,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	DefaultValue any      `json:"defaultValue,omitempty"`
}

// SourceGame is one game definition file. Includes and Appends name sibling
// JSON files whose field lists sandwich the game's own fields.
type SourceGame struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type,omitempty"`
	BracketMode bool          `json:"bracketMode,omitempty"`
	Includes    StringList    `json:"includes,omitempty"`
	Fields      []SourceField `json:"fields,omitempty"`
	Appends     StringList    `json:"appends,omitempty"`

	// FileName is set by LoadSourceGames; playlist order sorts on the
	// number embedded in it.
	FileName string `json:"-"`
}

// StringList accepts both a single string and an array of strings, matching
// the loose shape of the legacy config files.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// Component is a field in the designer's target schema.
type Component struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Type      string          `json:"type"`
	Kind      string          `json:"kind"`
	Weight    int             `json:"weight"`
	Audience  string          `json:"audience"`
	SortOrder int             `json:"sortOrder"`
	Config    ComponentConfig `json:"config"`
}

type ComponentConfig struct {
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty"`
	DefaultValue any      `json:"defaultValue,omitempty"`
}

// TargetGame is the converted per-game document.
type TargetGame struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	SchemaVersion string `json:"schemaVersion"`
	Content       struct {
		Title        string `json:"title"`
		Story        string `json:"story"`
		Instructions string `json:"instructions"`
	} `json:"content"`
	Scoring struct {
		Method     string      `json:"method"`
		Components []Component `json:"components"`
	} `json:"scoring"`
}

type PlaylistEntry struct {
	GameID  string `json:"gameId"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"`
}

type Camporee struct {
	SchemaVersion string `json:"schemaVersion"`
	Meta          struct {
		Title    string `json:"title"`
		Theme    string `json:"theme"`
		Year     int    `json:"year"`
		Director string `json:"director"`
	} `json:"meta"`
	Playlist []PlaylistEntry `json:"playlist"`
}

// Bundle is the full conversion output.
type Bundle struct {
	Camporee Camporee
	Presets  []Component
	Games    []TargetGame
}

const schemaVersion = "2.7"

var fileNumRe = regexp.MustCompile(`\d+`)

// LoadSourceGames reads every game file in dir, resolves the
// includes/fields/appends sandwich, and returns the games in playlist order
// (numeric filename order, non-numbered files last).
func LoadSourceGames(dir string) ([]SourceGame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read games directory %s: %w", dir, err)
	}

	var games []SourceGame
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "_") {
			continue
		}
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read game file %s: %w", name, err)
		}
		var g SourceGame
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("failed to parse game file %s: %w", name, err)
		}
		g.FileName = name

		resolved, err := resolveFields(dir, g.Includes)
		if err != nil {
			return nil, err
		}
		appended, err := resolveFields(dir, g.Appends)
		if err != nil {
			return nil, err
		}
		g.Fields = append(append(resolved, g.Fields...), appended...)
		games = append(games, g)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return fileNum(games[i].FileName) < fileNum(games[j].FileName)
	})
	return games, nil
}

func fileNum(name string) int {
	if m := fileNumRe.FindString(name); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 999
}

// resolveFields loads the field lists named by an includes/appends list.
// A missing or unparsable include is skipped, matching the tolerant behavior
// of the legacy converter.
func resolveFields(dir string, paths StringList) ([]SourceField, error) {
	var fields []SourceField
	for _, p := range paths {
		full := filepath.Join(dir, filepath.Clean(p))
		raw, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		var list []SourceField
		if err := json.Unmarshal(raw, &list); err != nil {
			continue
		}
		fields = append(fields, list...)
	}
	return fields, nil
}

// mapComponent translates a source field into the designer's component
// schema, folding legacy type names and deriving the weight from the kind.
func mapComponent(f SourceField) Component {
	comp := Component{
		ID:        f.ID,
		Label:     f.Label,
		Audience:  f.Audience,
		SortOrder: f.SortOrder,
	}
	if comp.Audience == "" {
		comp.Audience = "judge"
	}
	if comp.SortOrder == 0 {
		comp.SortOrder = 900
	}

	switch f.Type {
	case "timed":
		comp.Type = "stopwatch"
	case "boolean":
		comp.Type = "checkbox"
	case "range":
		// The designer UI has no range widget; fall back to number.
		comp.Type = "number"
	case "":
		comp.Type = "number"
	default:
		comp.Type = f.Type
	}

	comp.Kind = f.Kind
	if comp.Kind == "" {
		comp.Kind = "points"
	}
	switch comp.Kind {
	case "points":
		comp.Weight = 1
	case "penalty":
		comp.Weight = -1
	default:
		comp.Weight = 0
	}

	comp.Config = ComponentConfig{
		Min:          f.Min,
		Max:          f.Max,
		Placeholder:  f.Placeholder,
		DefaultValue: f.DefaultValue,
	}
	return comp
}

// Convert builds the full designer bundle from the games in dir.
func Convert(dir, title string, now time.Time) (*Bundle, error) {
	games, err := LoadSourceGames(dir)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{}
	bundle.Camporee.SchemaVersion = schemaVersion
	bundle.Camporee.Meta.Title = title
	bundle.Camporee.Meta.Year = now.Year()
	bundle.Presets = defaultPresets()

	for i, g := range games {
		target := TargetGame{
			ID:            g.ID,
			Type:          g.Type,
			SchemaVersion: schemaVersion,
		}
		if target.Type == "" {
			target.Type = "patrol"
		}
		target.Content.Title = g.Name
		target.Scoring.Method = "points_desc"
		for _, f := range g.Fields {
			target.Scoring.Components = append(target.Scoring.Components, mapComponent(f))
		}
		bundle.Games = append(bundle.Games, target)

		bundle.Camporee.Playlist = append(bundle.Camporee.Playlist, PlaylistEntry{
			GameID:  g.ID,
			Enabled: true,
			Order:   i + 1,
		})
	}
	return bundle, nil
}

func defaultPresets() []Component {
	minMax := func(lo, hi float64) (a, b *float64) { return &lo, &hi }
	pMin, pMax := minMax(0, 10)
	yMin, yMax := minMax(0, 5)
	sMin, sMax := minMax(0, 10)
	return []Component{
		{ID: "p_flag", Label: "Patrol Flag", Type: "number", Kind: "points", Weight: 10, Audience: "judge",
			Config: ComponentConfig{Min: pMin, Max: pMax, Placeholder: "0-10 Points"}},
		{ID: "p_yell", Label: "Patrol Yell", Type: "number", Kind: "points", Weight: 5, Audience: "judge",
			Config: ComponentConfig{Min: yMin, Max: yMax, Placeholder: "0-5 Points"}},
		{ID: "p_spirit", Label: "Scout Spirit", Type: "number", Kind: "points", Weight: 10, Audience: "judge",
			Config: ComponentConfig{Min: sMin, Max: sMax, Placeholder: "0-10 Points"}},
		{ID: "off_notes", Label: "Judges Notes", Type: "textarea", Kind: "info", Weight: 0, Audience: "judge",
			Config: ComponentConfig{Placeholder: "Issues, tie-breakers, etc."}},
		{ID: "off_score", Label: "Official Score", Type: "number", Kind: "points", Weight: 1, Audience: "admin",
			Config: ComponentConfig{Placeholder: "Final Calculated Points"}},
	}
}
