package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resumefill/internal/common"
	"resumefill/internal/core"
	"resumefill/internal/document"
	"resumefill/internal/parser"
	"resumefill/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Parse a resume file into labeled sections",
	Long: `Parse a resume file (PDF, DOCX or TXT) into labeled sections with a
generated summary and text metrics, without starting the HTTP server.

The output matches what the upload endpoint returns and can be
rendered as json, text or markdown.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = parseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	path := args[0]

	// The document reader handles format detection and decoding; the
	// common file processor only deals in plain text, so read here.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	text, err := document.ExtractText(types.RawDocument{
		Data:     data,
		Filename: filepath.Base(path),
	})
	if err != nil {
		return fmt.Errorf("failed to extract resume text: %w", err)
	}

	normalized := parser.NormalizeLines(text)
	sections := parser.Segment(normalized)

	record := types.ResumeRecord{
		Status:         core.StatusSuccess,
		Content:        normalized,
		ParsedSections: sections.Map(),
		SectionOrder:   sections.Labels(),
		Summary:        parser.Summarize(sections),
		Metadata:       parser.Metrics(normalized),
		Filename:       filepath.Base(path),
		UploadedAt:     time.Now().UTC(),
	}

	logger.Info("Resume parsed",
		"file", path,
		"sections", len(record.SectionOrder),
		"words", record.Metadata.WordCount)

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(record, parseConfig)
}
