package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vl4dimr/tesis-system-unap/internal/engine"
	"github.com/vl4dimr/tesis-system-unap/internal/observability"
	"github.com/vl4dimr/tesis-system-unap/internal/report"
	"github.com/vl4dimr/tesis-system-unap/internal/schemas"
)

type validateOptions struct {
	inputs  []string
	output  string
	pdfPath string
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate thesis documents against the rule catalog",
		Long:  "Validates one or more .docx files in parallel and prints a compliance report. Exits with code 2 when any document does not comply.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, root, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.inputs, "in", "i", nil, "Path to a .docx file (repeatable, required)")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Write the report JSON to this path")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "Write a PDF compliance report to this path")

	if err := cmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	return cmd
}

func runValidate(cmd *cobra.Command, root *rootOptions, opts *validateOptions) error {
	for _, in := range opts.inputs {
		if !isDocx(in) {
			return fmt.Errorf("solo se permiten archivos .docx: %s", in)
		}
	}

	cfg, cat, err := root.load()
	if err != nil {
		return err
	}
	eng := engine.New(cat, engine.Options{
		Workers:      cfg.Workers,
		QueueSize:    len(opts.inputs),
		MaxPartBytes: cfg.MaxPartBytes,
	})

	results := make([]report.ValidacionResultado, len(opts.inputs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(eng.Workers())
	for i, in := range opts.inputs {
		g.Go(func() error {
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", in, err)
			}
			res, err := eng.Validate(ctx, data)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			out := report.FromValidation(res.Report)
			out.Archivo = filepath.Base(in)
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout(), root.verbose)
	compliant := true
	for _, res := range results {
		printer.PrintValidation(res)
		compliant = compliant && res.EsValido
	}

	if opts.output != "" {
		if err := writeReportJSON(cmd, opts.output, results); err != nil {
			return err
		}
	}
	if opts.pdfPath != "" {
		if err := writeReportPDF(opts.pdfPath, results); err != nil {
			return err
		}
	}

	if !compliant {
		return errNotCompliant
	}
	return nil
}

// writeReportJSON writes one report object, or an array for several inputs.
// Reports failing the published schema are written anyway with a warning.
func writeReportJSON(cmd *cobra.Command, path string, results []report.ValidacionResultado) error {
	for _, res := range results {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		if err := schemas.ValidateBytes(schemas.ValidationReport, data); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: report for %s does not match the schema: %v\n", res.Archivo, err)
		}
	}

	var payload any = results
	if len(results) == 1 {
		payload = results[0]
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

func writeReportPDF(path string, results []report.ValidacionResultado) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDF file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close PDF file: %w", cerr)
		}
	}()
	if err := report.WritePDF(f, results...); err != nil {
		return fmt.Errorf("failed to render PDF report: %w", err)
	}
	return nil
}

func isDocx(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".docx")
}
