// Package document converts uploaded resume files (PDF, DOCX, plain
// text) into plain text. Extraction is a pure transform over the
// provided bytes; pages or paragraphs that yield no text contribute
// nothing rather than failing the whole document.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"resumefill/internal/errors"
	"resumefill/internal/types"
)

const wordprocessingMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ExtractText extracts plain text from an uploaded document, dispatching
// on the declared content type first and the filename extension second.
func ExtractText(doc types.RawDocument) (string, error) {
	switch {
	case doc.ContentType == "application/pdf" || hasExt(doc.Filename, ".pdf"):
		return extractPDF(doc.Data)
	case doc.ContentType == wordprocessingMIME || hasExt(doc.Filename, ".docx"):
		return extractDOCX(doc.Data)
	case strings.HasPrefix(doc.ContentType, "text/") || hasExt(doc.Filename, ".txt"):
		return decodeText(doc.Data)
	default:
		ext := strings.ToLower(filepath.Ext(doc.Filename))
		if ext == "" {
			ext = doc.ContentType
		}
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFileType,
			fmt.Sprintf("Unsupported file type: %s", ext), nil)
	}
}

func hasExt(filename, ext string) bool {
	return strings.EqualFold(filepath.Ext(filename), ext)
}

// extractPDF concatenates the text of every page that yields any.
// Pages without extractable text (scanned images, drawings) are skipped
// silently; an empty first page must not leave a placeholder in front
// of real content.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeDecodeFailure,
			"Failed to read PDF structure", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that cannot be decoded degrades to nothing,
			// same as a page with no text layer.
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return joinNonEmpty(pages), nil
}

// extractDOCX concatenates every paragraph's text joined by single
// spaces. Embedded images are ignored; table cells surface as ordinary
// paragraphs, which is acceptable for best-effort extraction.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeDecodeFailure,
			"Failed to parse DOCX structure", err)
	}
	defer func() { _ = doc.Close() }()

	return docxParagraphText(doc.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	textRun      = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

	xmlEntities = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

// docxParagraphText pulls the visible text runs out of raw
// wordprocessingML, one chunk per paragraph, joined by single spaces.
func docxParagraphText(content string) string {
	var paragraphs []string
	for _, para := range paragraphEnd.Split(content, -1) {
		var runs []string
		for _, match := range textRun.FindAllStringSubmatch(para, -1) {
			runs = append(runs, xmlEntities.Replace(match[1]))
		}
		paragraphs = append(paragraphs, strings.TrimSpace(strings.Join(runs, "")))
	}
	return joinNonEmpty(paragraphs)
}

func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.NewIOError(errors.ErrCodeDecodeFailure,
			"File content is not valid text", nil)
	}
	return string(data), nil
}

// joinNonEmpty joins the non-empty parts with single spaces. Empty
// parts vanish without leaving separators behind.
func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

// ReadPath reads a local PDF, DOCX or TXT file by filesystem path.
// This is a trusted-local-operator path: no sandboxing is applied.
func ReadPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".docx", ".txt":
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFileType,
			fmt.Sprintf("Unsupported file type: %s", ext), nil)
	}

	data, err := readFileBytes(path)
	if err != nil {
		return "", err
	}

	return ExtractText(types.RawDocument{Data: data, Filename: path})
}

func readFileBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	return data, nil
}
