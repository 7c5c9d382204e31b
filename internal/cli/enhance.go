package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"resumefill/internal/common"
	"resumefill/internal/types"

	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [resume-file]",
	Short: "Generate resume content tailored to an opening",
	Long: `Parse a resume file and ask the configured AI provider to tailor it
to a specific opening, without starting the HTTP server.

Requires a configured provider: either an API key in the settings file
(see "resumefill configure") or a running local Ollama server.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnhance,
}

var (
	enhanceJobTitle   string
	enhanceCompany    string
	enhanceField      string
	enhanceOutputFile string
)

func init() {
	enhanceCmd.Flags().StringVar(&enhanceJobTitle, "job-title", "", "Target job title (required)")
	enhanceCmd.Flags().StringVar(&enhanceCompany, "company", "", "Target company")
	enhanceCmd.Flags().StringVar(&enhanceField, "field", "", "Target field or industry")
	enhanceCmd.Flags().StringVarP(&enhanceOutputFile, "output", "o", "", "Output file path (default: stdout)")

	if err := enhanceCmd.MarkFlagRequired("job-title"); err != nil {
		panic(err)
	}
}

func runEnhance(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	path := args[0]

	svc, _, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close AI provider", "error", err)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	if _, err := svc.UploadResume(cmd.Context(), types.RawDocument{
		Data:     data,
		Filename: filepath.Base(path),
	}, types.EnhancementPreferences{}); err != nil {
		return err
	}

	content, err := svc.EnhanceResume(cmd.Context(), types.EnhanceResumeRequest{
		JobTitle: enhanceJobTitle,
		Company:  enhanceCompany,
		Field:    enhanceField,
	})
	if err != nil {
		return err
	}

	if enhanceOutputFile != "" {
		fileProcessor := common.NewFileProcessor(logger)
		if err := fileProcessor.WriteFile(enhanceOutputFile, content); err != nil {
			return err
		}
		logger.Info("Enhanced resume written", "file", enhanceOutputFile)
		return nil
	}

	fmt.Println(content)
	return nil
}
