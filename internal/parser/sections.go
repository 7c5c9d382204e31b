package parser

import "strings"

// SectionHeaders is the fixed vocabulary of resume section labels,
// in match-priority order: when two terms appear in the same short
// line, the earlier one wins.
var SectionHeaders = []string{
	"experience",
	"education",
	"skills",
	"projects",
	"summary",
	"objective",
	"certifications",
}

// OtherSection buckets lines that appear before any recognized header.
const OtherSection = "other"

// maxHeaderLen is the length ceiling for a line to qualify as a section
// header. Real content lines mentioning a header term tend to be longer.
const maxHeaderLen = 50

// SectionMap maps section labels to their accumulated text blocks,
// preserving the order in which labels first appeared in the source.
type SectionMap struct {
	labels []string
	blocks map[string]string
}

// NewSectionMap returns an empty SectionMap.
func NewSectionMap() *SectionMap {
	return &SectionMap{blocks: make(map[string]string)}
}

// add appends a block of lines to a label, creating the label on first
// use. A label can receive multiple blocks when its header recurs;
// blocks are joined by newlines so no line is ever dropped.
func (m *SectionMap) add(label, block string) {
	if block == "" {
		return
	}
	existing, ok := m.blocks[label]
	if !ok {
		m.labels = append(m.labels, label)
		m.blocks[label] = block
		return
	}
	m.blocks[label] = existing + "\n" + block
}

// Get returns the accumulated text for a label.
func (m *SectionMap) Get(label string) (string, bool) {
	text, ok := m.blocks[label]
	return text, ok
}

// Labels returns the section labels in order of first appearance.
func (m *SectionMap) Labels() []string {
	return m.labels
}

// Len returns the number of distinct sections.
func (m *SectionMap) Len() int {
	return len(m.labels)
}

// Map returns the label-to-text mapping. The returned map is the
// internal one; callers treat it as read-only.
func (m *SectionMap) Map() map[string]string {
	return m.blocks
}

// Segment splits newline-normalized text into labeled resume sections.
//
// It walks the text line by line keeping a current label (initially
// "other") and an accumulator. A non-empty line shorter than
// maxHeaderLen that contains a vocabulary term (case-insensitive,
// first term wins) is a section boundary: the accumulator is flushed
// under the previous label and the matched term becomes the current
// label. The header line itself is consumed by the boundary. Empty
// lines are skipped outright. Best-effort heuristics only; there is no
// correctness guarantee on real-world resumes.
func Segment(text string) *SectionMap {
	sections := NewSectionMap()
	current := OtherSection
	var accumulated []string

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if label, ok := matchHeader(line); ok {
			sections.add(current, strings.Join(accumulated, "\n"))
			current = label
			accumulated = nil
			continue
		}

		accumulated = append(accumulated, line)
	}

	sections.add(current, strings.Join(accumulated, "\n"))
	return sections
}

// matchHeader tests whether a line qualifies as a section header and
// returns the matched label.
func matchHeader(line string) (string, bool) {
	if len(line) >= maxHeaderLen {
		return "", false
	}
	lower := strings.ToLower(line)
	for _, header := range SectionHeaders {
		if strings.Contains(lower, header) {
			return header, true
		}
	}
	return "", false
}
