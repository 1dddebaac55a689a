package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/ticketctx/internal/services/tools"
)

// printResult writes text for --output text, otherwise v encoded as JSON or YAML
func printResult(cmd *cobra.Command, v interface{}, text string) error {
	out := cmd.OutOrStdout()

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(out, text)
		return err
	}
}

// requireConnection fails structured output when credentials are missing; text
// output reports the error the same way the tools do.
func requireConnection(cmd *cobra.Command) (bool, error) {
	err := application.Tools.Err()
	if err == nil {
		return true, nil
	}
	if outputFormat != "text" {
		return false, err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tools.ConfigErrorMessage(err))
	return false, nil
}
