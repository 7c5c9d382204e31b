package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumefill/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ResumeRecord", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeRecord", &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", "ExtractionRecord", &ExtractionTextFormatter{})
	registry.RegisterFormatter("markdown", "ExtractionRecord", &ExtractionMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ResumeRecord:
		return "ResumeRecord"
	case types.ExtractionRecord:
		return "ExtractionRecord"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ResumeTextFormatter handles text formatting for parsed resumes
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	record, ok := data.(types.ResumeRecord)
	if !ok {
		return "", fmt.Errorf("expected ResumeRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PARSED RESUME ===\n\n")
	if record.Filename != "" {
		output.WriteString(fmt.Sprintf("File: %s\n", record.Filename))
	}
	output.WriteString(fmt.Sprintf("Words: %d  Sentences: %d  Read time: %d min\n\n",
		record.Metadata.WordCount,
		record.Metadata.SentenceCount,
		record.Metadata.EstimatedReadTime))

	output.WriteString("Summary:\n")
	output.WriteString(record.Summary)
	output.WriteString("\n\n")

	output.WriteString("=== SECTIONS ===\n\n")
	for _, label := range record.SectionOrder {
		text, ok := record.ParsedSections[label]
		if !ok {
			continue
		}
		output.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(label)))
		output.WriteString(text)
		output.WriteString("\n\n")
	}

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ResumeRecord"
}

// ResumeMarkdownFormatter handles markdown formatting for parsed resumes
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	record, ok := data.(types.ResumeRecord)
	if !ok {
		return "", fmt.Errorf("expected ResumeRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Parsed Resume\n\n")
	if record.Filename != "" {
		output.WriteString(fmt.Sprintf("**File:** %s\n\n", record.Filename))
	}
	output.WriteString(fmt.Sprintf("**Words:** %d | **Sentences:** %d | **Read time:** %d min\n\n",
		record.Metadata.WordCount,
		record.Metadata.SentenceCount,
		record.Metadata.EstimatedReadTime))

	output.WriteString("## Summary\n\n")
	output.WriteString(record.Summary)
	output.WriteString("\n\n")

	output.WriteString("## Sections\n\n")
	for _, label := range record.SectionOrder {
		text, ok := record.ParsedSections[label]
		if !ok {
			continue
		}
		output.WriteString(fmt.Sprintf("### %s\n\n", titleCase(label)))
		output.WriteString(text)
		output.WriteString("\n\n")
	}

	return output.String(), nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "ResumeRecord"
}

// ExtractionTextFormatter handles text formatting for application extractions
type ExtractionTextFormatter struct{}

func (etf *ExtractionTextFormatter) Format(data any) (string, error) {
	record, ok := data.(types.ExtractionRecord)
	if !ok {
		return "", fmt.Errorf("expected ExtractionRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== EXTRACTED APPLICATION ===\n\n")
	output.WriteString(fmt.Sprintf("Words: %d  Sentences: %d  Paragraphs: %d\n\n",
		record.Metadata.WordCount,
		record.Metadata.SentenceCount,
		record.Metadata.ParagraphCount))

	output.WriteString(record.DisplayText)
	output.WriteString("\n")

	return output.String(), nil
}

func (etf *ExtractionTextFormatter) SupportedType() string {
	return "ExtractionRecord"
}

// ExtractionMarkdownFormatter handles markdown formatting for application extractions
type ExtractionMarkdownFormatter struct{}

func (emf *ExtractionMarkdownFormatter) Format(data any) (string, error) {
	record, ok := data.(types.ExtractionRecord)
	if !ok {
		return "", fmt.Errorf("expected ExtractionRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Extracted Application\n\n")
	output.WriteString(fmt.Sprintf("**Words:** %d | **Sentences:** %d | **Paragraphs:** %d\n\n",
		record.Metadata.WordCount,
		record.Metadata.SentenceCount,
		record.Metadata.ParagraphCount))

	output.WriteString("```\n")
	output.WriteString(record.DisplayText)
	output.WriteString("\n```\n")

	return output.String(), nil
}

func (emf *ExtractionMarkdownFormatter) SupportedType() string {
	return "ExtractionRecord"
}

// titleCase uppercases the first letter of a section label
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

