// Package main provides the docservice command: the HTTP service and the
// command-line tools that validate and format thesis documents.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vl4dimr/tesis-system-unap/internal/config"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// errNotCompliant signals that a document did not pass validation. It exits
// with code 2 so scripts can tell it apart from operational failures.
var errNotCompliant = errors.New("document does not comply with the format rules")

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	rulesPath  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "docservice",
		Short:         "Thesis document validation and formatting service",
		Long:          "docservice validates Word (.docx) theses against the UNAP format guide and corrects their formatting, as an HTTP service or from the command line.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "Path to a rule catalog (overrides RULES_FILE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "List every failing finding")

	root.AddCommand(
		newServeCmd(opts),
		newValidateCmd(opts),
		newFormatCmd(opts),
		newRulesCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// load resolves the configuration and the rule catalog it names.
func (o *rootOptions) load() (*config.Config, *rules.Catalog, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.rulesPath != "" {
		cfg.RulesFile = o.rulesPath
	}

	cat, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rule catalog: %w", err)
	}
	return cfg, cat, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errNotCompliant) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
