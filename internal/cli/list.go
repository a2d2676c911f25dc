package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/store"
	"github.com/aidanlsb/magpie/internal/ui"
)

var listFilter string

var listCmd = &cobra.Command{
	Use:   "list <artifacts|executions|contexts>",
	Short: "List records, optionally filtered",
	Long: `Lists records of one kind, optionally narrowed by a filter expression.

Filters compare attributes, type names, properties, and lineage neighbors:

  mgp list artifacts --filter "type = 'Model' AND properties.accuracy.double_value > 0.9"
  mgp list executions --filter "contexts_0.name = 'experiment-7'"
  mgp list contexts --filter "parent_contexts_0.type = 'Pipeline'"

See 'mgp docs filter-language' for the full filter reference.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}
		defer s.Close()

		start := time.Now()
		switch kind {
		case filter.KindArtifact:
			artifacts, err := s.ListArtifacts(listFilter)
			if err != nil {
				return listError(err)
			}
			return outputArtifacts(artifacts, time.Since(start))
		case filter.KindExecution:
			executions, err := s.ListExecutions(listFilter)
			if err != nil {
				return listError(err)
			}
			return outputExecutions(executions, time.Since(start))
		default:
			contexts, err := s.ListContexts(listFilter)
			if err != nil {
				return listError(err)
			}
			return outputContexts(contexts, time.Since(start))
		}
	},
}

// listError maps a failed list to the right error code: filter compilation
// failures are the caller's input, everything else is the store's fault.
func listError(err error) error {
	if filter.IsFilterError(err) {
		return handleError(ErrFilterInvalid, err, "See 'mgp docs filter-language' for filter syntax")
	}
	return handleError(ErrStoreError, err, "")
}

func outputArtifacts(artifacts []*store.Artifact, elapsed time.Duration) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"artifacts": artifacts},
			&Meta{Count: len(artifacts), QueryTimeMs: elapsed.Milliseconds()})
		return nil
	}

	table := ui.NewTable(4)
	table.AddRow("ID", "TYPE", "NAME", "URI")
	for _, a := range artifacts {
		table.AddRow(strconv.FormatInt(a.ID, 10), a.Type, a.Name, a.URI)
	}
	fmt.Print(table.String())
	fmt.Println(ui.Hint(ui.Count(len(artifacts), "artifact", "artifacts")))
	return nil
}

func outputExecutions(executions []*store.Execution, elapsed time.Duration) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"executions": executions},
			&Meta{Count: len(executions), QueryTimeMs: elapsed.Milliseconds()})
		return nil
	}

	table := ui.NewTable(3)
	table.AddRow("ID", "TYPE", "NAME")
	for _, e := range executions {
		table.AddRow(strconv.FormatInt(e.ID, 10), e.Type, e.Name)
	}
	fmt.Print(table.String())
	fmt.Println(ui.Hint(ui.Count(len(executions), "execution", "executions")))
	return nil
}

func outputContexts(contexts []*store.Context, elapsed time.Duration) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"contexts": contexts},
			&Meta{Count: len(contexts), QueryTimeMs: elapsed.Milliseconds()})
		return nil
	}

	table := ui.NewTable(3)
	table.AddRow("ID", "TYPE", "NAME")
	for _, c := range contexts {
		table.AddRow(strconv.FormatInt(c.ID, 10), c.Type, c.Name)
	}
	fmt.Print(table.String())
	fmt.Println(ui.Hint(ui.Count(len(contexts), "context", "contexts")))
	return nil
}

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Filter expression")
	rootCmd.AddCommand(listCmd)
}
