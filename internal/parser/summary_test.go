package parser

import "testing"

func sectionsFrom(t *testing.T, input string) *SectionMap {
	t.Helper()
	return Segment(NormalizeLines(input))
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "experience and skills",
			input: "Experience:\nBuilt systems.\nShipped code.\nSkills:\nPython, Go",
			want:  "Built systems.  Shipped code. Key skills include: Python, Go",
		},
		{
			name:  "summary section is verbatim",
			input: "Summary\nSeasoned engineer.\nSkills\nGo",
			want:  "Seasoned engineer. Key skills include: Go",
		},
		{
			name:  "experience capped at two sentences",
			input: "Experience\nFirst. Second! Third? Fourth.",
			want:  "First.  Second!",
		},
		{
			name:  "missing parts are omitted",
			input: "Education\nBS Computer Science",
			want:  "",
		},
		{
			name:  "unterminated experience fragment",
			input: "Experience\nBuilding things since 2015",
			want:  "Building things since 2015",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(sectionsFrom(t, tt.input))
			if got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantWords     int
		wantSentences int
		wantReadTime  int
	}{
		{"empty", "", 0, 1, 0},
		{"two sentences", "Hello world. Bye now.", 4, 3, 0},
		// Trailing terminator produces an extra empty split segment.
		// That off-by-one is long-standing observed behavior and is
		// deliberately not corrected here.
		{"no trailing terminator", "Hello world. Bye now", 4, 2, 0},
		{"no terminators at all", "just some words", 3, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Metrics(tt.input)
			if got.WordCount != tt.wantWords {
				t.Errorf("WordCount = %d, want %d", got.WordCount, tt.wantWords)
			}
			if got.SentenceCount != tt.wantSentences {
				t.Errorf("SentenceCount = %d, want %d", got.SentenceCount, tt.wantSentences)
			}
			if got.EstimatedReadTime != tt.wantReadTime {
				t.Errorf("EstimatedReadTime = %d, want %d", got.EstimatedReadTime, tt.wantReadTime)
			}
		})
	}
}

func TestMetricsReadTimeFloor(t *testing.T) {
	var words []byte
	for range 450 {
		words = append(words, []byte("word ")...)
	}

	got := Metrics(string(words))
	if got.WordCount != 450 {
		t.Fatalf("WordCount = %d, want 450", got.WordCount)
	}
	if want := got.WordCount / 200; got.EstimatedReadTime != want {
		t.Errorf("EstimatedReadTime = %d, want %d", got.EstimatedReadTime, want)
	}
	if got.EstimatedReadTime != 2 {
		t.Errorf("EstimatedReadTime = %d, want floor(450/200) = 2", got.EstimatedReadTime)
	}
}
