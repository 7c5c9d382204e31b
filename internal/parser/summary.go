package parser

import (
	"regexp"
	"strings"

	"resumefill/internal/types"
)

var (
	// sentenceRun matches a run of sentence terminators. Splitting on it
	// leaves a trailing empty segment when text ends in punctuation,
	// which inflates the sentence count by one. Callers already
	// compensate for that, so the behavior is kept as-is.
	sentenceRun = regexp.MustCompile(`[.!?]+`)

	// sentenceWithTerminator captures sentences with their closing
	// terminator run attached, plus any unterminated trailing fragment.
	sentenceWithTerminator = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
)

// experienceSentenceLimit bounds how much of the experience section
// makes it into the derived summary.
const experienceSentenceLimit = 2

// wordsPerMinute is the assumed reading speed for the estimated read time.
const wordsPerMinute = 200

// Summarize derives a short summary from segmented sections: the raw
// summary section verbatim, the first sentences of experience, and the
// skills list. Missing parts are simply omitted.
func Summarize(sections *SectionMap) string {
	var parts []string

	if summary, ok := sections.Get("summary"); ok {
		parts = append(parts, summary)
	}

	if experience, ok := sections.Get("experience"); ok {
		sentences := sentenceWithTerminator.FindAllString(Collapse(experience), -1)
		if len(sentences) > experienceSentenceLimit {
			sentences = sentences[:experienceSentenceLimit]
		}
		if len(sentences) > 0 {
			parts = append(parts, strings.Join(sentences, " "))
		}
	}

	if skills, ok := sections.Get("skills"); ok {
		parts = append(parts, "Key skills include: "+skills)
	}

	return strings.Join(parts, " ")
}

// Metrics computes word, sentence and read-time counts over
// whitespace-collapsed text.
func Metrics(text string) types.ResumeMetadata {
	words := strings.Fields(text)
	sentences := sentenceRun.Split(text, -1)

	return types.ResumeMetadata{
		WordCount:         len(words),
		SentenceCount:     len(sentences),
		EstimatedReadTime: len(words) / wordsPerMinute,
	}
}
