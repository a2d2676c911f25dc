package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/config"
	"github.com/aidanlsb/magpie/internal/store"
	"github.com/aidanlsb/magpie/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new metadata store",
	Long: `Creates a new metadata store at the specified path.

Creates:
  - <path>/              (store directory)
  - <path>/.magpie/      (SQLite database)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if err := os.MkdirAll(path, 0755); err != nil {
			return handleError(ErrStoreError, fmt.Errorf("failed to create store directory: %w", err), "")
		}

		s, err := store.Open(path)
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}
		defer s.Close()

		// Seed a commented config template on first use so the new store can
		// be registered under [stores].
		configFile, err := config.CreateDefault()
		if err != nil {
			configFile = ""
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"path": path, "config": configFile}, nil)
			return nil
		}

		fmt.Println(ui.Successf("Initialized store at %s", path))
		if configFile != "" {
			fmt.Println(ui.Hint("Register it under [stores] in " + configFile))
		}
		fmt.Println(ui.Hint("Next: mgp put artifact -f manifest.yaml --store-path " + path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
