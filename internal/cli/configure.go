package cli

import (
	"fmt"

	"resumefill/internal/settings"
	"resumefill/internal/types"

	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Update persisted AI provider settings",
	Long: `Update the provider settings stored in ~/.resumefill/config.json.
A running server picks the change up through its settings watcher.

Passing --api-key with an empty value clears the stored key, which
unconfigures hosted providers until a new key is set.`,
	RunE: runConfigure,
}

var (
	configureAPIKey  string
	configureAPIBase string
	configureModel   string
	configureShow    bool
)

func init() {
	configureCmd.Flags().StringVar(&configureAPIKey, "api-key", "", "Provider API key (empty clears the stored key)")
	configureCmd.Flags().StringVar(&configureAPIBase, "api-base", "", "Provider API base URL override")
	configureCmd.Flags().StringVar(&configureModel, "model", "", "Model name override")
	configureCmd.Flags().BoolVar(&configureShow, "show", false, "Print current settings without changing them")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())

	path := cfg.Settings.Path
	if path == "" {
		var err error
		path, err = settings.DefaultPath()
		if err != nil {
			return err
		}
	}

	store, err := settings.NewFileStore(path)
	if err != nil {
		return err
	}

	if configureShow {
		current, _, err := store.Load()
		if err != nil {
			return err
		}
		printSettings(path, current)
		return nil
	}

	// Without --api-key the stored key must survive, so reuse it.
	patch := types.ProviderSettings{
		APIKey:  configureAPIKey,
		APIBase: configureAPIBase,
		Model:   configureModel,
	}
	if !cmd.Flags().Changed("api-key") {
		current, _, err := store.Load()
		if err != nil {
			return err
		}
		patch.APIKey = current.APIKey
	}

	merged, err := store.Update(patch)
	if err != nil {
		return err
	}

	fmt.Println("Provider settings updated")
	printSettings(path, merged)
	return nil
}

func printSettings(path string, s types.ProviderSettings) {
	fmt.Printf("Settings file: %s\n", path)
	if s.APIKey == "" {
		fmt.Println("API key:  (not set)")
	} else if len(s.APIKey) > 8 {
		fmt.Printf("API key:  ****%s\n", s.APIKey[len(s.APIKey)-4:])
	} else {
		fmt.Println("API key:  ****")
	}
	if s.APIBase != "" {
		fmt.Printf("API base: %s\n", s.APIBase)
	}
	if s.Model != "" {
		fmt.Printf("Model:    %s\n", s.Model)
	}
}
