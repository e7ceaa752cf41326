package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adept-ml/preprocessing/internal/cli/output"
	"github.com/adept-ml/preprocessing/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective preprocessing configuration.

By default outputs YAML format. Use --output to change format; "table"
prints one flattened key per row.

Examples:
  # Show effective config as YAML
  preprocessing config show

  # Show as JSON
  preprocessing config show --output json

  # Show specific config file as a table
  preprocessing config show --config /etc/preprocessing/config.yaml -o table`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json|table)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(out, cfg)
	case output.FormatTable:
		table, err := configTable(cfg)
		if err != nil {
			return err
		}
		return output.PrintTable(out, table)
	default:
		return output.PrintYAML(out, cfg)
	}
}

// configTable flattens cfg into dotted keys using its YAML form, so the
// keys match the configuration file and the environment variables.
func configTable(cfg *config.Config) (*output.TableData, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to flatten config: %w", err)
	}

	flat := map[string]string{}
	flatten("", tree, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := output.NewTableData("Key", "Value")
	for _, k := range keys {
		table.AddRow(k, flat[k])
	}
	return table, nil
}

func flatten(prefix string, v any, into map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, into)
		}
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		into[prefix] = strings.Join(parts, ",")
	case nil:
		into[prefix] = ""
	default:
		if s, ok := val.(string); ok && s == "" {
			into[prefix] = `""`
			return
		}
		into[prefix] = fmt.Sprint(val)
	}
}
