package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the closed set of scored value kinds. Legacy configs used
// free-form type strings ("timed", "stopwatch", "range", "textarea",
// "checkbox"); NormalizeFieldType folds those onto this set.
type FieldType string

const (
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDuration FieldType = "duration"
	FieldText     FieldType = "text"
	FieldInfo     FieldType = "info"
)

// FieldKind decides how a field contributes to a total.
type FieldKind string

const (
	KindPoints  FieldKind = "points"
	KindPenalty FieldKind = "penalty"
	KindInfo    FieldKind = "info"
)

// Weight maps a kind onto its scoring multiplier.
func (k FieldKind) Weight() int {
	switch k {
	case KindPoints:
		return 1
	case KindPenalty:
		return -1
	default:
		return 0
	}
}

// Field is one scored input on a station's form.
type Field struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Type         FieldType `json:"type"`
	Kind         FieldKind `json:"kind,omitempty"`
	Audience     string    `json:"audience,omitempty"`
	Placeholder  string    `json:"placeholder,omitempty"`
	Min          *float64  `json:"min,omitempty"`
	Max          *float64  `json:"max,omitempty"`
	SortOrder    int       `json:"sortOrder,omitempty"`
	DefaultValue any       `json:"defaultValue,omitempty"`
}

// NormalizeFieldType maps legacy type strings onto the closed FieldType set.
func NormalizeFieldType(raw string) FieldType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "timed", "stopwatch", "duration":
		return FieldDuration
	case "boolean", "checkbox":
		return FieldBoolean
	case "text", "textarea":
		return FieldText
	case "info":
		return FieldInfo
	case "number", "range", "":
		return FieldNumber
	default:
		return FieldNumber
	}
}

// FormatDuration renders minutes/seconds as the zero-padded "MM:SS" string
// carried in score payloads.
func FormatDuration(minutes, seconds int) string {
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ParseDuration splits an "MM:SS" payload value back into minutes and seconds.
func ParseDuration(v string) (minutes, seconds int, err error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("duration %q is not MM:SS", v)
	}
	minutes, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("duration %q has invalid minutes: %w", v, err)
	}
	seconds, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("duration %q has invalid seconds: %w", v, err)
	}
	if minutes < 0 || seconds < 0 || seconds > 59 {
		return 0, 0, fmt.Errorf("duration %q out of range", v)
	}
	return minutes, seconds, nil
}

// ValidateValue checks a payload value against the field's type and bounds.
// A nil value is always accepted: absence of a score is not an error at the
// field level.
func (f Field) ValidateValue(v any) error {
	if v == nil {
		return nil
	}
	switch f.Type {
	case FieldBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("field %s: expected boolean, got %T", f.ID, v)
		}
	case FieldDuration:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("field %s: expected MM:SS string, got %T", f.ID, v)
		}
		if s == "" {
			return nil
		}
		if _, _, err := ParseDuration(s); err != nil {
			return fmt.Errorf("field %s: %w", f.ID, err)
		}
	case FieldNumber:
		n, err := toFloat(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.ID, err)
		}
		if f.Min != nil && n < *f.Min {
			return fmt.Errorf("field %s: %v below minimum %v", f.ID, n, *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Errorf("field %s: %v above maximum %v", f.ID, n, *f.Max)
		}
	case FieldText, FieldInfo:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("field %s: expected string, got %T", f.ID, v)
		}
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		if n == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", v)
	}
}
