package cli

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/store"
	"github.com/aidanlsb/magpie/internal/ui"
)

var (
	putFile     string
	putContexts []int64
	putParents  []int64
)

// manifest is the YAML input format for put commands.
type manifest struct {
	Type             string                 `yaml:"type"`
	Name             string                 `yaml:"name"`
	URI              string                 `yaml:"uri"`
	Properties       map[string]interface{} `yaml:"properties"`
	CustomProperties map[string]interface{} `yaml:"custom_properties"`
}

var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Add records to the store",
	Long: `Adds a record from a YAML manifest.

The manifest names the record's type (registered on first use), its
attributes, and its typed and custom properties:

  type: Model
  uri: gs://bucket/models/fraud-v3
  properties:
    accuracy: 0.97
    version: 3
  custom_properties:
    stage: prod

Artifacts without an explicit name get one derived from the URI.`,
}

var putArtifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Add an artifact from a YAML manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, code, err := readManifest(putFile)
		if err != nil {
			return handleError(code, err, "")
		}
		if m.Name == "" && m.URI != "" {
			m.Name = slug.Make(path.Base(strings.TrimRight(m.URI, "/")))
		}

		props, custom, err := manifestProperties(m)
		if err != nil {
			return handleError(ErrManifestInvalid, err, "")
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}
		defer s.Close()

		typeID, err := s.PutType(m.Type, filter.KindArtifact)
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}

		artifact := &store.Artifact{
			TypeID:           typeID,
			Type:             m.Type,
			URI:              m.URI,
			Name:             m.Name,
			Properties:       props,
			CustomProperties: custom,
		}
		if _, err := s.PutArtifact(artifact); err != nil {
			return handleError(ErrStoreError, err, "")
		}

		for _, contextID := range putContexts {
			if _, err := s.GetContext(contextID); err != nil {
				return handleError(ErrRecordNotFound, err, "")
			}
			if err := s.AddAttribution(contextID, artifact.ID); err != nil {
				return handleError(ErrStoreError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"artifact": artifact}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Added artifact %d (%s)", artifact.ID, artifact.Name))
		return nil
	},
}

var putExecutionCmd = &cobra.Command{
	Use:   "execution",
	Short: "Add an execution from a YAML manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, code, err := readManifest(putFile)
		if err != nil {
			return handleError(code, err, "")
		}
		props, custom, err := manifestProperties(m)
		if err != nil {
			return handleError(ErrManifestInvalid, err, "")
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}
		defer s.Close()

		typeID, err := s.PutType(m.Type, filter.KindExecution)
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}

		execution := &store.Execution{
			TypeID:           typeID,
			Type:             m.Type,
			Name:             m.Name,
			Properties:       props,
			CustomProperties: custom,
		}
		if _, err := s.PutExecution(execution); err != nil {
			return handleError(ErrStoreError, err, "")
		}

		for _, contextID := range putContexts {
			if _, err := s.GetContext(contextID); err != nil {
				return handleError(ErrRecordNotFound, err, "")
			}
			if err := s.AddAssociation(contextID, execution.ID); err != nil {
				return handleError(ErrStoreError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"execution": execution}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Added execution %d (%s)", execution.ID, execution.Name))
		return nil
	},
}

var putContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Add a context from a YAML manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, code, err := readManifest(putFile)
		if err != nil {
			return handleError(code, err, "")
		}
		if m.Name == "" {
			return handleErrorMsg(ErrManifestInvalid, "context manifests require a name", "")
		}
		props, custom, err := manifestProperties(m)
		if err != nil {
			return handleError(ErrManifestInvalid, err, "")
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}
		defer s.Close()

		typeID, err := s.PutType(m.Type, filter.KindContext)
		if err != nil {
			return handleError(ErrStoreError, err, "")
		}

		context := &store.Context{
			TypeID:           typeID,
			Type:             m.Type,
			Name:             m.Name,
			Properties:       props,
			CustomProperties: custom,
		}
		if _, err := s.PutContext(context); err != nil {
			return handleError(ErrStoreError, err, "")
		}

		for _, parentID := range putParents {
			if _, err := s.GetContext(parentID); err != nil {
				return handleError(ErrRecordNotFound, err, "")
			}
			if err := s.AddParentContext(context.ID, parentID); err != nil {
				return handleError(ErrStoreError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"context": context}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Added context %d (%s)", context.ID, context.Name))
		return nil
	},
}

// readManifest reads and validates a YAML manifest from a file or stdin ("-").
// On failure it returns the error code to report alongside the error.
func readManifest(file string) (*manifest, string, error) {
	var data []byte
	var err error
	if file == "" || file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, ErrFileReadError, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, ErrManifestInvalid, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Type == "" {
		return nil, ErrManifestInvalid, fmt.Errorf("manifest is missing the record type")
	}
	return &m, "", nil
}

// manifestProperties converts the manifest's YAML values to typed property
// values. Integers stay integers; YAML floats become doubles.
func manifestProperties(m *manifest) (props, custom map[string]store.PropertyValue, err error) {
	props, err = convertProperties(m.Properties)
	if err != nil {
		return nil, nil, err
	}
	custom, err = convertProperties(m.CustomProperties)
	if err != nil {
		return nil, nil, err
	}
	return props, custom, nil
}

func convertProperties(in map[string]interface{}) (map[string]store.PropertyValue, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]store.PropertyValue, len(in))
	for name, value := range in {
		switch v := value.(type) {
		case int:
			out[name] = store.IntProperty(int64(v))
		case int64:
			out[name] = store.IntProperty(v)
		case float64:
			out[name] = store.DoubleProperty(v)
		case string:
			out[name] = store.StringProperty(v)
		case bool:
			// SQLite has no boolean column; store as 0/1.
			if v {
				out[name] = store.IntProperty(1)
			} else {
				out[name] = store.IntProperty(0)
			}
		default:
			return nil, fmt.Errorf("property %q has unsupported value %v (use int, float, string, or bool)", name, value)
		}
	}
	return out, nil
}

func init() {
	putCmd.PersistentFlags().StringVarP(&putFile, "file", "f", "", "YAML manifest path (default: stdin)")
	putArtifactCmd.Flags().Int64SliceVar(&putContexts, "context", nil, "Context id to attribute the artifact to (repeatable)")
	putExecutionCmd.Flags().Int64SliceVar(&putContexts, "context", nil, "Context id to associate the execution with (repeatable)")
	putContextCmd.Flags().Int64SliceVar(&putParents, "parent", nil, "Parent context id (repeatable)")

	putCmd.AddCommand(putArtifactCmd)
	putCmd.AddCommand(putExecutionCmd)
	putCmd.AddCommand(putContextCmd)
	rootCmd.AddCommand(putCmd)
}
