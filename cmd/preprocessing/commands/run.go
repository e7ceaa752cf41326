package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/adept-ml/preprocessing/internal/cli/output"
	"github.com/adept-ml/preprocessing/pkg/building"
	"github.com/adept-ml/preprocessing/pkg/config"
	"github.com/adept-ml/preprocessing/pkg/preprocess"
)

var (
	runInput  string
	runOutput string
	runMethod string
	runFormat string
)

var runCmd = &cobra.Command{
	Use:   "run <clean|interpolate|normalize>",
	Short: "Process a payload file offline",
	Long: `Run one preprocessing operation on a file and print a summary.

The input holds either a request body ({"payload": ...}) or a bare
building document. The processed document is written to --output, or to
stdout when no output file is given; the summary then goes to stderr.

Thresholds and worker count come from the configuration.

Examples:
  # Clean a payload and write the result
  preprocessing run clean --input buildings.json --output cleaned.json

  # Normalize with z-score and print the summary as JSON
  preprocessing run normalize --method mean --input cleaned.json -o json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(preprocess.OpClean), string(preprocess.OpInterpolate), string(preprocess.OpNormalize)},
	RunE:      runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Input file (- for stdin)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "Output file (default: stdout)")
	runCmd.Flags().StringVar(&runMethod, "method", string(preprocess.MinMax), "Normalization method (minmax|mean)")
	runCmd.Flags().StringVarP(&runFormat, "format", "o", "table", "Summary format (table|json|yaml)")
	_ = runCmd.MarkFlagRequired("input")
}

func runRun(cmd *cobra.Command, args []string) error {
	op, ok := preprocess.ParseOperation(args[0])
	if !ok {
		return fmt.Errorf("unknown operation %q (valid: clean, interpolate, normalize)", args[0])
	}

	format, err := output.ParseFormat(runFormat)
	if err != nil {
		return err
	}

	var method preprocess.Method
	if op == preprocess.OpNormalize {
		if method, err = preprocess.ParseMethod(runMethod); err != nil {
			return err
		}
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), runInput)
	if err != nil {
		return err
	}

	set, err := decodeInput(data)
	if err != nil {
		return err
	}

	processor := config.CreateProcessor(cfg, nil, nil)
	out, report, err := processor.Apply(context.Background(), op, method, set)
	if err != nil {
		return err
	}

	body, err := building.Encode(out)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	summary := cmd.OutOrStdout()
	if runOutput == "" {
		if _, err := cmd.OutOrStdout().Write(append(body, '\n')); err != nil {
			return err
		}
		summary = cmd.ErrOrStderr()
	} else {
		if err := os.WriteFile(runOutput, body, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		_, _ = fmt.Fprintf(summary, "Wrote %s to %s\n\n", humanize.IBytes(uint64(len(body))), runOutput)
	}

	return output.PrintReport(summary, format, report)
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// decodeInput accepts a request body or a bare building document. A
// top-level "payload" whose value is a building entry (sensors plus
// dataframe) names a building, not the request envelope.
func decodeInput(data []byte) (*building.Set, error) {
	if isBuildingEntry(gjson.GetBytes(data, "payload")) {
		return decodeBareDocument(data)
	}
	set, err := building.DecodeRequest(data)
	if errors.Is(err, building.ErrInvalidRequest) && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		set, err = building.DecodeDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return set, nil
}

func decodeBareDocument(data []byte) (*building.Set, error) {
	set, err := building.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return set, nil
}

func isBuildingEntry(v gjson.Result) bool {
	return v.IsObject() && v.Get("sensors").Exists() && v.Get("dataframe").Exists()
}
