package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vl4dimr/tesis-system-unap/internal/observability"
)

func newRulesCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule catalog",
		Long:  "Loads and validates the rule catalog (embedded, RULES_FILE or --rules) and prints it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cat, err := root.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				observability.NewPrinter(out, root.verbose).PrintCatalog(cat)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(cat.File()); err != nil {
					return fmt.Errorf("failed to encode catalog: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(cat.File()); err != nil {
					return fmt.Errorf("failed to encode catalog: %w", err)
				}
			default:
				return fmt.Errorf("unknown format %q (want table, yaml or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, yaml or json")
	return cmd
}
