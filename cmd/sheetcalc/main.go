// Package main provides the CLI entry point for sheetcalc-go.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/projectflow/sheetcalc-go/internal/config"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/output"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/parser"
)

var (
	configPath string
	outputPath string
	format     string
	pretty     bool
	sheetName  string
	chain      string
	workers    int
	verbose    bool
	sheetsDir  string

	rowJSON   string
	sheetFile string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetcalc",
		Short: "Recompute formula cells of project sheets",
		Long: `sheetcalc-go evaluates the formula cells ("=SUM([Progress])") of project
sheets stored as JSON, YAML or Excel files and writes the computed rows.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.sheetcalc/config.yaml, ./.sheetcalc/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&chain, "chain", "", "Formula chaining: off, resolve (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every formula that fails to evaluate")

	rootCmd.AddCommand(newComputeCmd(), newEvalCmd(), newCheckCmd(), newConfigCmd())
	return rootCmd
}

func newComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute [input]",
		Short: "Recompute every formula cell of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompute,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json, yaml, xlsx, table (overrides config)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Only compute the named sheet")
	cmd.Flags().IntVar(&workers, "workers", 0, "Sheets computed in parallel (overrides config)")
	cmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files (.yaml with --format yaml, else .json)")
	return cmd
}

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [formula]",
		Short: "Evaluate a single formula",
		Long: `Evaluate a single formula against a row. Aggregates such as SUM run over
the rows of --sheet-file; without one the row is the only row.`,
		Args: cobra.ExactArgs(1),
		RunE: runEval,
	}
	cmd.Flags().StringVar(&rowJSON, "row", "{}", "Current row as a JSON object")
	cmd.Flags().StringVar(&sheetFile, "sheet-file", "", "Workbook providing columns and rows")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet of --sheet-file to use (default: first)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [input]",
		Short: "Report invalid formulas without computing",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Only check the named sheet")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ProjectConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists: %s", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := config.WriteDefault(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})
	return cmd
}

// loadOptions merges the config file with command line overrides
func loadOptions(cmd *cobra.Command) (*config.Config, sheetcalc.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, sheetcalc.Options{}, err
	}
	if chain != "" {
		cfg.Engine.Chain = chain
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		cfg.Batch.Workers = workers
	}
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		cfg.Output.Format = format
	}
	if f := cmd.Flags().Lookup("pretty"); f != nil && f.Changed {
		cfg.Output.Pretty = pretty
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, sheetcalc.Options{}, err
	}
	if verbose {
		opts.OnError = func(issue sheetcalc.FormulaIssue) {
			log.Printf("warning: %s", issue)
		}
	}
	return cfg, opts, nil
}

func loadWorkbook(path string) (*models.Workbook, error) {
	wb, err := sheetcalc.Load(path)
	if err != nil {
		return nil, err
	}
	if sheetName == "" {
		return wb, nil
	}
	sheet, ok := wb.Sheet(sheetName)
	if !ok {
		return nil, fmt.Errorf("sheet not found: %s", sheetName)
	}
	return &models.Workbook{Name: wb.Name, Sheets: []models.Sheet{*sheet}}, nil
}

func runCompute(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	outFormat, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	if outFormat.Binary() && outputPath == "" {
		return fmt.Errorf("%s output requires --output", outFormat)
	}

	wb, err := loadWorkbook(args[0])
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	computed, err := sheetcalc.ComputeWorkbook(ctx, wb, opts)
	if err != nil {
		return fmt.Errorf("compute failed: %w", err)
	}

	if outFormat == output.FormatXLSX {
		if err := output.SaveXLSX(computed, outputPath); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if outputPath != "" || sheetsDir == "" {
		data, err := render(computed, outFormat, cfg)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if outputPath != "" {
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		} else {
			cmd.OutOrStdout().Write(data)
		}
	}

	if sheetsDir != "" {
		if err := writeSheetFiles(computed, sheetsDir, outFormat, cfg.Output.Pretty); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	return nil
}

func render(wb *models.Workbook, f output.Format, cfg *config.Config) ([]byte, error) {
	switch f {
	case output.FormatYAML:
		return output.ToYAML(wb)
	case output.FormatTable:
		return renderTable(wb, cfg.Output.Locale)
	default:
		data, err := output.ToJSON(wb, cfg.Output.Pretty)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

func renderTable(wb *models.Workbook, locale string) ([]byte, error) {
	var buf bytes.Buffer
	if err := output.NewTableWriter(locale).WriteWorkbook(&buf, wb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSheetFiles writes one file per sheet: YAML when f is yaml, JSON otherwise
func writeSheetFiles(wb *models.Workbook, dir string, f output.Format, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		var (
			data []byte
			ext  string
			err  error
		)
		if f == output.FormatYAML {
			data, err = output.SheetToYAML(sheet)
			ext = ".yaml"
		} else {
			data, err = output.SheetToJSON(sheet, pretty)
			ext = ".json"
		}
		if err != nil {
			return err
		}

		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("sheet%d", i+1)
		}
		filename := filepath.Join(dir, name+ext)
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return err
		}
	}

	return nil
}

func runEval(cmd *cobra.Command, args []string) error {
	_, opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	row, err := parser.DecodeRow([]byte(rowJSON), parser.FormatJSON)
	if err != nil {
		return fmt.Errorf("invalid --row: %w", err)
	}

	var sheet models.Sheet
	if sheetFile != "" {
		wb, err := loadWorkbook(sheetFile)
		if err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
		if len(wb.Sheets) == 0 {
			return fmt.Errorf("no sheets in %s", sheetFile)
		}
		sheet = wb.Sheets[0]
	} else {
		sheet.Rows = []models.Row{row}
		for key := range row {
			if !models.IsReserved(key) {
				sheet.Columns = append(sheet.Columns, models.Column{ID: key, Title: key})
			}
		}
	}

	result := sheetcalc.EvaluateFormula(args[0], row, sheet.Rows, sheet.Columns, opts)
	data, err := output.ValueToJSON(result)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	wb, err := loadWorkbook(args[0])
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	var issues []sheetcalc.FormulaIssue
	for _, sheet := range wb.Sheets {
		issues = append(issues, sheetcalc.Check(sheet, opts)...)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, issue := range issues {
		if err := enc.Encode(issue); err != nil {
			return err
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d invalid formula(s)", len(issues))
	}
	return nil
}
