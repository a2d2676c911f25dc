package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/store"
	"github.com/aidanlsb/magpie/internal/ui"
)

var typesCmd = &cobra.Command{
	Use:   "types [artifacts|executions|contexts]",
	Short: "List registered record types",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := []filter.RecordKind{filter.KindArtifact, filter.KindExecution, filter.KindContext}
		if len(args) == 1 {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return handleError(ErrInvalidInput, err, "")
			}
			kinds = []filter.RecordKind{kind}
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}
		defer s.Close()

		byKind := make(map[string][]store.TypeRecord, len(kinds))
		total := 0
		for _, kind := range kinds {
			types, err := s.ListTypes(kind)
			if err != nil {
				return handleError(ErrStoreError, err, "")
			}
			byKind[kind.String()] = types
			total += len(types)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"types": byKind}, &Meta{Count: total})
			return nil
		}

		for _, kind := range kinds {
			types := byKind[kind.String()]
			fmt.Println(ui.Header(kind.String() + " types"))
			if len(types) == 0 {
				fmt.Println(ui.Hint("  (none registered)"))
				continue
			}
			table := ui.NewTable(2)
			for _, t := range types {
				table.AddRow("  "+strconv.FormatInt(t.ID, 10), t.Name)
			}
			fmt.Print(table.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
