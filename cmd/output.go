package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"section3/internal/errs"
)

var outputFormat string

type commandEnvelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// printResult writes the envelope to stdout and hands err back so the exit code is non-zero.
func printResult(cmd *cobra.Command, data any, err error) error {
	out := commandEnvelope{Success: err == nil, Data: data}
	if err != nil {
		out.Error = err.Error()
		out.ErrorKind = string(errs.KindOf(err))
	}

	if writeErr := writeEnvelope(cmd, out); writeErr != nil {
		return errs.Wrap(writeErr, "write command output")
	}
	return err
}

func writeEnvelope(cmd *cobra.Command, out commandEnvelope) error {
	switch strings.ToLower(strings.TrimSpace(outputFormat)) {
	case "", "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "yaml":
		// Round-trip through JSON so YAML keys match the JSON field names.
		raw, err := json.Marshal(out)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		if err := encoder.Encode(generic); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return errs.Ef(errs.KindInvalidInput, "unsupported --output %q", outputFormat)
	}
}
