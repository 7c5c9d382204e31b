package cli

import (
	"context"
	"time"

	"resumefill/internal/common"
	"resumefill/internal/core"
	"resumefill/internal/errors"
	"resumefill/internal/parser"
	"resumefill/internal/types"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [text-file]",
	Short: "Clean scraped application-form text for review",
	Long: `Clean a file of scraped application-form text into numbered display
sections, the same transformation the extract endpoint applies. Useful
for checking what the browser extension would show before generation.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if extractConfig.OutputFormat == "" {
			extractConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(extractConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runExtract,
}

var extractConfig common.CommandConfig

func init() {
	extractCmd.Flags().StringVarP(&extractConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().StringVar(&extractConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	createInput := func(contents []string) (string, error) {
		if contents[0] == "" {
			return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"Application text file is empty", nil)
		}
		return contents[0], nil
	}

	logDetails := func(input string, cfg common.CommandConfig) {
		logger.Info("Extracting application text",
			"chars", len(input),
			"output_format", cfg.OutputFormat)
	}

	extractOperation := func(ctx context.Context, rawText string) (types.ExtractionRecord, error) {
		cleaned := parser.CleanApplicationText(rawText)
		displaySections := parser.SplitDisplaySections(cleaned)

		metadata := parser.ApplicationMetrics(cleaned)
		metadata.Timestamp = time.Now().UTC()

		return types.ExtractionRecord{
			Status:      core.StatusSuccess,
			DisplayText: parser.FormatForDisplay(displaySections),
			Metadata:    metadata,
		}, nil
	}

	return common.RunFileCommand(
		cmd.Context(),
		logger,
		extractConfig,
		args,
		createInput,
		extractOperation,
		logDetails,
	)
}
