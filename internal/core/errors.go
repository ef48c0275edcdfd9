package core

import "fmt"

// ParseError reports structurally unrecoverable input to the section
// parser. It is the only error that aborts a whole review.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// AgentCallError reports a transport-level failure (timeout, rate limit,
// connection refused) of one agent call for one section. The controller
// treats it as zero suggestions for that section and agent.
type AgentCallError struct {
	Agent   string
	Section string
	Err     error
}

func (e *AgentCallError) Error() string {
	return fmt.Sprintf("agent %s failed on section %q: %v", e.Agent, e.Section, e.Err)
}

func (e *AgentCallError) Unwrap() error { return e.Err }

// ValidationError reports a failed orchestrator validation call. The
// controller recovers by passing through the unfiltered union of findings.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("suggestion validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
