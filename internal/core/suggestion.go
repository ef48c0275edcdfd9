package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SuggestionType categorizes a finding by the agent that produced it.
type SuggestionType string

const (
	SuggestionClarity SuggestionType = "clarity"
	SuggestionRigor   SuggestionType = "rigor"
)

// Severity is an ordered scale for suggestions: info < warning < error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// ParseSeverity maps a severity string to its Severity value. Unknown
// values default to info so a sloppy model response never drops a finding.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "critical", "high":
		return SeverityError
	case "warning", "warn", "medium":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// MarshalJSON encodes the severity as its string form ("info", "warning",
// "error") so API responses match the wire format of the review clients.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either the string form or a bare integer.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = ParseSeverity(str)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("severity must be a string or integer: %s", string(data))
	}
	if n < int(SeverityInfo) || n > int(SeverityError) {
		return fmt.Errorf("severity out of range: %d", n)
	}
	*s = Severity(n)
	return nil
}

// Suggestion is a single critique finding produced by an agent for one
// section. Fields are never mutated after creation; the orchestrator only
// decides inclusion and ordering.
type Suggestion struct {
	ID          string         `json:"id"`
	Type        SuggestionType `json:"type"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	// Section refers back to the section by title, not by ownership.
	Section      string   `json:"section"`
	LineStart    int      `json:"line_start,omitempty"`
	LineEnd      int      `json:"line_end,omitempty"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
	References   []string `json:"references,omitempty"`
}
