// Package parser implements the text processing core: whitespace
// normalization, heuristic section segmentation, and the summary and
// metrics derivation used for both resumes and scraped application text.
//
// Two normalization contracts exist on purpose. Collapse flattens every
// whitespace run (newlines included) to a single space and feeds the
// metrics and summary paths, which do not care about line boundaries.
// NormalizeLines keeps line boundaries intact and feeds the section
// segmenter, which cannot work without them. Call sites must not mix
// the two within one pipeline stage.
package parser

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	inlineSpace   = regexp.MustCompile(`[ \t]+`)
	specialChars  = regexp.MustCompile(`[^\w\s.,!?-]`)
)

// Collapse replaces every run of whitespace, newlines included, with a
// single space and trims the result. Idempotent.
func Collapse(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// NormalizeLines unifies line endings to \n and collapses inline
// whitespace within each line, trimming the line edges. Line boundaries
// survive so the segmenter can walk the text line by line. Idempotent.
func NormalizeLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// StripSpecial removes characters outside word characters, whitespace
// and the punctuation whitelist [.,!?-]. Applied to scraped
// application-form text only; resume text keeps its punctuation raw so
// emails and phone numbers survive.
func StripSpecial(text string) string {
	return specialChars.ReplaceAllString(text, "")
}
