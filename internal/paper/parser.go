// Package paper parses markdown paper drafts into sections and prepares
// them for agent analysis: keyword filtering, token estimation and
// sentence-aware truncation.
package paper

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/draftproof/paper-warden/internal/core"
)

var (
	// Matches any ATX heading, e.g. "## Method".
	headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	// Matches a numbered heading title, e.g. "1. Introduction" or
	// "3.1 Results". The trailing period after a top-level number is
	// optional.
	numberedTitleRegex = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+(.+)$`)
)

// ParseSections splits raw markdown into an ordered sequence of sections.
// Every heading line starts a new section at the heading's level; preamble
// before the first heading becomes its own level-0 section; input without
// any heading is returned as a single whole-document section. Concatenating
// section contents with their heading lines reconstructs the input.
//
// It fails with *core.ParseError only on structurally unrecoverable input.
func ParseSections(content string) ([]core.Section, error) {
	if !utf8.ValidString(content) {
		return nil, &core.ParseError{Reason: "document is not valid UTF-8 text"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	lines := strings.Split(content, "\n")
	var sections []core.Section
	current := -1 // index into sections of the open section

	flush := func(endLine int) {
		if current >= 0 {
			sections[current].EndLine = endLine
		}
	}

	for i, line := range lines {
		lineNum := i + 1

		m := headingRegex.FindStringSubmatch(line)
		if m == nil {
			if current < 0 {
				// Preamble before the first heading.
				sections = append(sections, core.Section{
					Title:     "Preamble",
					Level:     0,
					StartLine: lineNum,
				})
				current = len(sections) - 1
			}
			sections[current].Content += line + "\n"
			continue
		}

		flush(lineNum - 1)

		level := len(m[1])
		title := m[2]
		number := ""
		if nm := numberedTitleRegex.FindStringSubmatch(title); nm != nil {
			number = nm[1]
			title = strings.TrimSpace(nm[2])
		}

		sections = append(sections, core.Section{
			Title:     title,
			Level:     level,
			Number:    number,
			StartLine: lineNum,
		})
		current = len(sections) - 1
	}
	flush(len(lines))

	return mergeSubsections(sections), nil
}

// mergeSubsections folds numbered subsections (e.g. "3.1") into their
// numbered top-level parent so each reviewed unit carries its full context.
// Unnumbered sections and the preamble pass through unchanged.
func mergeSubsections(sections []core.Section) []core.Section {
	var out []core.Section
	byNumber := make(map[string]int) // top-level number -> index into out

	for _, s := range sections {
		if s.Number == "" {
			out = append(out, s)
			continue
		}

		top := s.Number
		if dot := strings.Index(top, "."); dot != -1 {
			top = top[:dot]
		}

		if s.Number == top {
			out = append(out, s)
			byNumber[top] = len(out) - 1
			continue
		}

		parentIdx, ok := byNumber[top]
		if !ok {
			// Orphan subsection: keep it as its own section rather than
			// dropping content.
			out = append(out, s)
			continue
		}

		parent := &out[parentIdx]
		header := strings.Repeat("#", max(s.Level, 1)) + " " + s.Number + " " + s.Title + "\n"
		parent.Content += "\n" + header + s.Content
		if s.EndLine > parent.EndLine {
			parent.EndLine = s.EndLine
		}
	}

	return out
}

// Summary renders the document structure as an indented outline, one line
// per section.
func Summary(sections []core.Section) string {
	var b strings.Builder
	for i, s := range sections {
		indent := ""
		if s.Level > 1 {
			indent = strings.Repeat("  ", s.Level-1)
		}
		b.WriteString(indent)
		b.WriteString(s.Title)
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
