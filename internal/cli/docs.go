package cli

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	builtindocs "github.com/aidanlsb/magpie/docs"
	"github.com/aidanlsb/magpie/internal/ui"
)

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Browse bundled documentation",
	Long: `Browse long-form documentation bundled into the mgp binary.

  mgp docs
  mgp docs filter-language`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := listDocsTopics()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if len(args) == 0 {
			return outputDocsTopics(topics)
		}

		topic := args[0]
		if !containsTopic(topics, topic) {
			return handleErrorMsg(ErrInvalidInput,
				fmt.Sprintf("unknown docs topic %q", topic),
				"Run 'mgp docs' to list topics")
		}
		return outputDocsTopic(topic)
	},
}

func listDocsTopics() ([]string, error) {
	entries, err := fs.ReadDir(builtindocs.FS, ".")
	if err != nil {
		return nil, err
	}

	var topics []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		topics = append(topics, strings.TrimSuffix(name, ".md"))
	}
	sort.Strings(topics)
	return topics, nil
}

func containsTopic(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}

func outputDocsTopics(topics []string) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"topics": topics}, &Meta{Count: len(topics)})
		return nil
	}

	fmt.Println(ui.Header("Topics"))
	for _, topic := range topics {
		fmt.Printf("  %s\n", ui.Accent.Render(topic))
	}
	fmt.Println(ui.Hint("Read one with: mgp docs <topic>"))
	return nil
}

func outputDocsTopic(topic string) error {
	content, err := fs.ReadFile(builtindocs.FS, topic+".md")
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]string{"topic": topic, "content": string(content)}, nil)
		return nil
	}

	// Render markdown only when writing to a terminal; pipes get raw text.
	if isatty.IsTerminal(os.Stdout.Fd()) {
		display := ui.NewDisplayContext()
		rendered, err := ui.RenderMarkdown(string(content), display.TermWidth)
		if err == nil {
			fmt.Print(rendered)
			return nil
		}
	}
	fmt.Print(string(content))
	return nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
