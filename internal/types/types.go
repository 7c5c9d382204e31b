package types

import "time"

// RawDocument is an uploaded document before text extraction: the raw
// payload plus whatever the caller declared about it. It lives only for
// the duration of one upload request.
type RawDocument struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ResumeMetadata holds the counts derived from the normalized resume text.
type ResumeMetadata struct {
	WordCount         int `json:"word_count"`
	SentenceCount     int `json:"sentence_count"`
	EstimatedReadTime int `json:"estimated_read_time"`
}

// EnhancementPreferences are caller-selected directives that shape the
// generated content. AdditionalInfo carries free-form key/value pairs
// rendered as bullet lines in the prompt.
type EnhancementPreferences struct {
	EnhancementFocus string            `json:"enhancement_focus,omitempty"`
	IndustryFocus    string            `json:"industry_focus,omitempty"`
	TargetKeywords   string            `json:"target_keywords,omitempty"`
	CompanyCulture   string            `json:"company_culture,omitempty"`
	AdditionalInfo   map[string]string `json:"additional_info,omitempty"`
}

// ResumeRecord is the single retained most-recent processed resume.
// It is replaced wholesale on each upload.
type ResumeRecord struct {
	Status         string                 `json:"status"`
	Content        string                 `json:"content"`
	ParsedSections map[string]string      `json:"parsed_sections"`
	SectionOrder   []string               `json:"section_order,omitempty"`
	Summary        string                 `json:"summary"`
	Metadata       ResumeMetadata         `json:"metadata"`
	Preferences    EnhancementPreferences `json:"preferences,omitempty"`
	Filename       string                 `json:"file_name,omitempty"`
	UploadedAt     time.Time              `json:"uploaded_at"`
}

// ExtractionMetadata holds the counts derived from scraped application text.
type ExtractionMetadata struct {
	Timestamp         time.Time `json:"timestamp"`
	WordCount         int       `json:"word_count"`
	SentenceCount     int       `json:"sentence_count"`
	ParagraphCount    int       `json:"paragraph_count"`
	EstimatedReadTime int       `json:"estimated_read_time"`
}

// ExtractionRecord is the single retained most-recent processed
// application-form text blob. Same overwrite-on-write lifecycle as
// ResumeRecord.
type ExtractionRecord struct {
	Status      string             `json:"status"`
	DisplayText string             `json:"display_text"`
	Metadata    ExtractionMetadata `json:"metadata"`
}

// EnhanceResumeRequest asks for resume content tailored to a specific opening.
type EnhanceResumeRequest struct {
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
	Field    string `json:"field"`
}

// EnhanceApplicationRequest asks for auto-fill-ready answers for a
// scraped application form.
type EnhanceApplicationRequest struct {
	EnhancementFocus   string            `json:"enhancement_focus"`
	ResumeContent      string            `json:"resume_content"`
	ApplicationContent string            `json:"application_content"`
	IndustryFocus      string            `json:"industry_focus"`
	TargetKeywords     string            `json:"target_keywords"`
	CompanyCulture     string            `json:"company_culture"`
	AdditionalInfo     map[string]string `json:"additional_info,omitempty"`
}

// ContextSettings extend the hosted provider's system instruction with
// background about the operator.
type ContextSettings struct {
	CareerLevel         string `json:"career_level,omitempty"`
	KeySkills           string `json:"key_skills,omitempty"`
	PreferredIndustries string `json:"preferred_industries,omitempty"`
}

// ProviderSettings is the runtime-mutable model gateway configuration,
// persisted to the on-disk settings store.
type ProviderSettings struct {
	APIKey  string `json:"api_key"`
	APIBase string `json:"api_base,omitempty"`
	Model   string `json:"model,omitempty"`
}
