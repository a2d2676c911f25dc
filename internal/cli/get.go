package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/store"
	"github.com/aidanlsb/magpie/internal/ui"
)

var getCmd = &cobra.Command{
	Use:   "get <artifact|execution|context> <id>",
	Short: "Show one record by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("invalid record id %q", args[1]), "")
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}
		defer s.Close()

		switch kind {
		case filter.KindArtifact:
			artifact, err := s.GetArtifact(id)
			if err != nil {
				return getError(err)
			}
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"artifact": artifact}, nil)
				return nil
			}
			printRecordHeader(artifact.ID, artifact.Type, artifact.Name)
			if artifact.URI != "" {
				fmt.Printf("uri: %s\n", artifact.URI)
			}
			printProperties(artifact.Properties, artifact.CustomProperties)
		case filter.KindExecution:
			execution, err := s.GetExecution(id)
			if err != nil {
				return getError(err)
			}
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"execution": execution}, nil)
				return nil
			}
			printRecordHeader(execution.ID, execution.Type, execution.Name)
			printProperties(execution.Properties, execution.CustomProperties)
		default:
			context, err := s.GetContext(id)
			if err != nil {
				return getError(err)
			}
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"context": context}, nil)
				return nil
			}
			printRecordHeader(context.ID, context.Type, context.Name)
			printProperties(context.Properties, context.CustomProperties)
		}
		return nil
	},
}

func getError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return handleError(ErrRecordNotFound, err, "Run 'mgp list' to see stored records")
	}
	return handleError(ErrStoreError, err, "")
}

func printRecordHeader(id int64, typeName, name string) {
	fmt.Printf("%s %s\n", ui.Header(fmt.Sprintf("#%d", id)), ui.Accent.Render(name))
	fmt.Printf("type: %s\n", typeName)
}

func printProperties(props, custom map[string]store.PropertyValue) {
	if len(props) > 0 {
		fmt.Println(ui.Header("properties"))
		printPropertyMap(props)
	}
	if len(custom) > 0 {
		fmt.Println(ui.Header("custom properties"))
		printPropertyMap(custom)
	}
}

func printPropertyMap(m map[string]store.PropertyValue) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	table := ui.NewTable(2)
	for _, name := range names {
		table.AddRow("  "+name, m[name].Display())
	}
	fmt.Print(table.String())
}

func init() {
	rootCmd.AddCommand(getCmd)
}
