// Package review runs the critique workflow: parse the draft into
// sections, fan out the applicable agents per section, accumulate their
// findings and finish with one validation pass over the whole set.
package review

import (
	"fmt"

	"github.com/draftproof/paper-warden/internal/core"
)

// State is a workflow phase. The controller is an explicit state machine
// so the ordering guarantees are auditable instead of hidden in a graph
// library.
type State int

const (
	// StateParsing splits the draft into sections.
	StateParsing State = iota
	// StateAnalyzing runs the agent fan-out for the current section.
	StateAnalyzing
	// StateAdvancing moves the cursor to the next section.
	StateAdvancing
	// StateValidating runs the orchestrator over all findings.
	StateValidating
	// StateDone is terminal.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateParsing:
		return "parsing"
	case StateAnalyzing:
		return "analyzing"
	case StateAdvancing:
		return "advancing"
	case StateValidating:
		return "validating"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ReviewState is the single mutable aggregate for one review request. It
// is owned by exactly one workflow run, never aliased and never persisted.
type ReviewState struct {
	Sections []core.Section
	// Cursor strictly increases from 0 to len(Sections).
	Cursor int
	// ClarityFindings and RigorFindings are append-only; accumulation
	// order is preserved for the fallback path.
	ClarityFindings  []core.Suggestion
	RigorFindings    []core.Suggestion
	FinalSuggestions []core.Suggestion
	// Complete is set exactly once, when validation finishes.
	Complete bool
}

// Union returns all findings in accumulation order: the clarity list
// followed by the rigor list. This is the exact fallback result when
// validation fails.
func (s *ReviewState) Union() []core.Suggestion {
	union := make([]core.Suggestion, 0, len(s.ClarityFindings)+len(s.RigorFindings))
	union = append(union, s.ClarityFindings...)
	union = append(union, s.RigorFindings...)
	return union
}

// nextState is the transition function. It is total over the non-terminal
// states; asking for a transition out of StateDone is a programming error.
func nextState(current State, s *ReviewState) State {
	switch current {
	case StateParsing:
		if len(s.Sections) == 0 {
			return StateValidating
		}
		return StateAnalyzing
	case StateAnalyzing:
		return StateAdvancing
	case StateAdvancing:
		if s.Cursor < len(s.Sections) {
			return StateAnalyzing
		}
		return StateValidating
	case StateValidating:
		return StateDone
	default:
		panic(fmt.Sprintf("review: no transition out of %s", current))
	}
}
