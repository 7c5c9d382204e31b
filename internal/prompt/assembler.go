// Package prompt assembles the natural-language instructions sent to
// the model gateway. Every non-empty request field is embedded verbatim;
// nothing is truncated or length-capped here. If an assembled prompt
// exceeds the target model's context window, that failure surfaces from
// the gateway, not from this package.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"resumefill/internal/types"
)

// SystemInstruction is the fixed role given to the hosted provider.
const SystemInstruction = "You are a professional resume writer."

// focusInstructions maps each recognized enhancement focus to the
// behavioral clause woven into the prompt. Unrecognized focus values
// pass through without a clause; that is not an error.
var focusInstructions = map[string]string{
	"Clarity & Conciseness":      "Keep every answer short, clear and direct. Remove filler words and redundant phrasing.",
	"Professional Tone":          "Use a formal, professional register throughout. Avoid casual language and contractions.",
	"Keywords Optimization":      "Weave the target keywords naturally into the answers wherever they are truthful.",
	"Impact & Achievement Focus": "Emphasize concrete outcomes, measurable results and achievements over responsibilities.",
}

// outputFormat is the contract on the shape of the model's reply. The
// gateway does not parse or validate the response against it; it is an
// instruction to the model only.
const outputFormat = `Format your response with exactly one form field per line as "Field: Value". ` +
	`Where you can identify a DOM selector for the field, append it in square brackets after the value. ` +
	`Omit the brackets entirely when no selector is identifiable. ` +
	`Do not add any other formatting, headers or commentary.`

// BuildSystemInstruction extends the fixed system role with whatever
// context settings the operator has provided.
func BuildSystemInstruction(ctx *types.ContextSettings) string {
	if ctx == nil {
		return SystemInstruction
	}

	parts := []string{SystemInstruction}
	if ctx.CareerLevel != "" {
		parts = append(parts, "The candidate's career level: "+ctx.CareerLevel+".")
	}
	if ctx.KeySkills != "" {
		parts = append(parts, "The candidate's key skills: "+ctx.KeySkills+".")
	}
	if ctx.PreferredIndustries != "" {
		parts = append(parts, "The candidate's preferred industries: "+ctx.PreferredIndustries+".")
	}
	return strings.Join(parts, " ")
}

// EnhanceResume builds the prompt for tailoring resume content to a
// specific opening.
func EnhanceResume(req types.EnhanceResumeRequest, resumeContent string) string {
	var b strings.Builder

	writeField(&b, "Job Title", req.JobTitle)
	writeField(&b, "Company", req.Company)
	writeField(&b, "Field", req.Field)
	b.WriteString("\nOriginal Content:\n")
	b.WriteString(resumeContent)
	b.WriteString("\n\nPlease enhance this content to better match the job requirements while maintaining truthfulness.")

	return b.String()
}

// EnhanceApplication builds the prompt for generating auto-fill-ready
// answers to a scraped application form.
func EnhanceApplication(req types.EnhanceApplicationRequest) string {
	var b strings.Builder

	b.WriteString("You are helping a candidate fill out a job application form.\n\n")

	b.WriteString("Candidate resume:\n")
	b.WriteString(req.ResumeContent)
	b.WriteString("\n\nApplication form content:\n")
	b.WriteString(req.ApplicationContent)
	b.WriteString("\n\n")

	writeField(&b, "Enhancement focus", req.EnhancementFocus)
	if clause, ok := focusInstructions[req.EnhancementFocus]; ok {
		b.WriteString(clause)
		b.WriteString("\n")
	}
	writeField(&b, "Industry focus", req.IndustryFocus)
	writeField(&b, "Target keywords", req.TargetKeywords)
	writeField(&b, "Company culture notes", req.CompanyCulture)

	if len(req.AdditionalInfo) > 0 {
		b.WriteString("Additional information:\n")
		b.WriteString(renderAdditionalInfo(req.AdditionalInfo))
	}

	b.WriteString("\nGenerate a tailored answer for every field or question in the application form, ")
	b.WriteString("drawing only on the resume and the information above.\n")
	b.WriteString(outputFormat)

	return b.String()
}

// writeField emits "Label: value" for non-empty values; empty fields
// are omitted rather than rendered as placeholders.
func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

// renderAdditionalInfo renders the free-form pairs as bullet lines,
// sorted by key so the assembled prompt is deterministic.
func renderAdditionalInfo(info map[string]string) string {
	keys := make([]string, 0, len(info))
	for key := range info {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", key, info[key])
	}
	return b.String()
}
