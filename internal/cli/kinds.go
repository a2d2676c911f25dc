package cli

import (
	"fmt"

	"github.com/aidanlsb/magpie/internal/filter"
)

// parseKindArg maps a CLI record-kind argument to its RecordKind. Both the
// singular and plural spellings are accepted.
func parseKindArg(arg string) (filter.RecordKind, error) {
	switch arg {
	case "artifact", "artifacts":
		return filter.KindArtifact, nil
	case "execution", "executions":
		return filter.KindExecution, nil
	case "context", "contexts":
		return filter.KindContext, nil
	default:
		return 0, fmt.Errorf("unknown record kind %q (expected artifacts, executions, or contexts)", arg)
	}
}
