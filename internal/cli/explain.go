package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/ui"
)

var explainCmd = &cobra.Command{
	Use:   "explain <artifacts|executions|contexts> <filter>",
	Short: "Show the SQL a filter compiles to",
	Long: `Compiles a filter expression without running it and prints the
resulting FROM and WHERE clauses. Useful for debugging filters and for
seeing which joins a filter needs.

  mgp explain artifacts "contexts_0.name = 'exp' AND properties.accuracy.double_value > 0.9"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		query, err := filter.Compile(kind, args[1])
		if err != nil {
			return handleError(ErrFilterInvalid, err, "See 'mgp docs filter-language' for filter syntax")
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{
				"from":  query.From,
				"where": query.Where,
			}, nil)
			return nil
		}

		fmt.Println(ui.Header("FROM"))
		fmt.Printf("  %s\n", query.From)
		fmt.Println(ui.Header("WHERE"))
		fmt.Printf("  %s\n", query.Where)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
