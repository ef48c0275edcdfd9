// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

// Section is a titled, ordered region of a parsed paper. Sections are
// produced once per review by the parser and never mutated afterwards.
type Section struct {
	Title string `json:"title"`
	// Level is the heading depth (1-6). The preamble before the first
	// heading, if any, uses level 0.
	Level     int    `json:"level"`
	Content   string `json:"content"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	// Number is the extracted section number for numbered headings,
	// e.g. "3" or "3.1.2". Empty for unnumbered headings.
	Number string `json:"number,omitempty"`
	// Truncated marks a section whose content was cut to fit the token
	// budget before being sent to an agent.
	Truncated bool `json:"truncated,omitempty"`
}
