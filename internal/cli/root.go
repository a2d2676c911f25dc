package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/config"
	"github.com/aidanlsb/magpie/internal/store"
	"github.com/aidanlsb/magpie/internal/ui"
)

var (
	// Global flags
	storeName     string // Named store from config
	storePathFlag string // Explicit path
	configPath    string

	// Resolved values
	resolvedStorePath string
	cfg               *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mgp",
	Short: "magpie - a metadata store for ML lineage",
	Long: `magpie tracks the artifacts, executions, and contexts of ML workflows
and the lineage edges between them, backed by a local SQLite store.

Records are queried with a typed filter language that compiles to SQL:

  mgp list artifacts --filter "type = 'Model' AND properties.accuracy.double_value > 0.9"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store resolution for commands that don't need one
		switch cmd.Name() {
		case "init", "explain", "docs", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "docs") {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.SetCodeTheme(cfg.UI.CodeTheme)

		// Resolve store path: explicit path > named store > default
		if storePathFlag != "" {
			resolvedStorePath = storePathFlag
		} else if storeName != "" {
			resolvedStorePath, err = cfg.GetStorePath(storeName)
			if err != nil {
				return fmt.Errorf("store '%s' not found\n\nAdd it to [stores] in %s", storeName, config.DefaultPath())
			}
		} else {
			resolvedStorePath, err = cfg.GetStorePath("")
			if err != nil {
				return fmt.Errorf(`no store specified

Either:
  1. Use --store <name> (from config)
  2. Use --store-path /path/to/store
  3. Set default_store in %s
  4. Run 'mgp init /path/to/new/store' to create one`, config.DefaultPath())
			}
		}

		if _, err := os.Stat(resolvedStorePath); os.IsNotExist(err) {
			return fmt.Errorf("store not found: %s\n\nRun 'mgp init %s' to create it", resolvedStorePath, resolvedStorePath)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeName, "store", "s", "", "Named store from config")
	rootCmd.PersistentFlags().StringVar(&storePathFlag, "store-path", "", "Explicit path to store directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// openStore opens the resolved store.
func openStore() (*store.Store, error) {
	return store.Open(resolvedStorePath)
}

func loadGlobalConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}
