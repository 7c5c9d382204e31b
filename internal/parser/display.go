package parser

import (
	"fmt"
	"regexp"
	"strings"

	"resumefill/internal/types"
)

// displayHeader marks a line that opens a new display section in
// scraped application text: either an ALL-CAPS style "HEADER:" line or
// a numbered item like "3.".
var displayHeader = regexp.MustCompile(`^(?:[A-Z][^a-z]*:|\d+\.)`)

// CleanApplicationText prepares scraped application-form text for
// display sectioning: special characters outside the punctuation
// whitelist are stripped and lines are normalized with boundaries kept,
// so headers remain detectable.
func CleanApplicationText(text string) string {
	return NormalizeLines(StripSpecial(text))
}

// SplitDisplaySections cuts cleaned application text into logical
// chunks at display-header boundaries. The header line stays at the top
// of its chunk.
func SplitDisplaySections(text string) []string {
	var sections []string
	var current []string

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(current, "\n"))
		if chunk != "" {
			sections = append(sections, chunk)
		}
		current = nil
	}

	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\n")
		if displayHeader.MatchString(line) && len(current) > 0 {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return sections
}

// FormatForDisplay renders section chunks as numbered "§n." blocks.
// When a chunk's first line carries a "Header:" prefix the header is
// lifted into the block title.
func FormatForDisplay(sections []string) string {
	formatted := make([]string, 0, len(sections))

	for i, section := range sections {
		firstLine, rest, _ := strings.Cut(section, "\n")
		if header, content, ok := strings.Cut(firstLine, ":"); ok {
			body := strings.TrimSpace(content)
			if rest != "" {
				body = strings.TrimSpace(body + "\n" + rest)
			}
			formatted = append(formatted, fmt.Sprintf("§%d. %s\n%s\n", i+1, strings.TrimSpace(header), body))
			continue
		}
		formatted = append(formatted, fmt.Sprintf("§%d. Section\n%s\n", i+1, section))
	}

	return strings.Join(formatted, "\n")
}

// ApplicationMetrics computes word, sentence, paragraph and read-time
// counts over cleaned application text. Word and sentence counts use
// the collapsed form; paragraphs are blank-line separated blocks of the
// line-preserving form.
func ApplicationMetrics(text string) types.ExtractionMetadata {
	collapsed := Collapse(text)
	words := strings.Fields(collapsed)
	sentences := sentenceRun.Split(collapsed, -1)

	paragraphs := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}

	return types.ExtractionMetadata{
		WordCount:         len(words),
		SentenceCount:     len(sentences),
		ParagraphCount:    paragraphs,
		EstimatedReadTime: len(words) / wordsPerMinute,
	}
}
