package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/expense-insight/internal/client"
	"github.com/insightdelivered/expense-insight/internal/dashboard"
	"github.com/insightdelivered/expense-insight/internal/models"
	"github.com/insightdelivered/expense-insight/internal/upload"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		serviceURL string
		jsonOut    bool
		noColor    bool
		csvPath    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <statement>",
		Short: "Upload one statement and print the results",
		Example: `  expense-insight analyze statement.csv
  expense-insight analyze --json receipt.heic
  expense-insight analyze --csv flagged.csv january.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if serviceURL != "" {
				cfg.Service.URL = serviceURL
			}

			path := args[0]
			if !upload.IsAccepted(path) {
				return fmt.Errorf("%s: %s", filepath.Base(path), upload.UnsupportedTypeMessage)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("input file not readable: %w", err)
			}

			previews := upload.NewPreviews()
			form := upload.NewForm(previews)
			defer form.Close()
			if err := form.SelectFile(filepath.Base(path), data); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stderr := cmd.ErrOrStderr()
			fmt.Fprintf(stderr, "%s %s\n", upload.BusyLabel(path), path)

			var result models.AnalysisResult
			out, err := form.Submit(ctx, client.New(cfg.Service.URL, cfg.Service.Timeout), func(r models.AnalysisResult) {
				result = r
			})
			if err != nil {
				return err
			}
			if out.Kind != models.OutcomeSuccess {
				return fmt.Errorf("analysis failed: %s", out.Message)
			}
			fmt.Fprintf(stderr, "  Found %d transaction(s), %d flagged\n", len(result.Transactions), len(result.Anomalies))

			if csvPath != "" {
				if err := writeCSV(csvPath, result); err != nil {
					return err
				}
				fmt.Fprintf(stderr, "  Flagged transactions: %s\n", csvPath)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return dashboard.RenderTerminal(cmd.OutOrStdout(), dashboard.NewView(result), dashboard.TerminalOptions{NoColor: noColor})
		},
	}

	cmd.Flags().StringVar(&serviceURL, "service", "", "analysis service origin (overrides service.url)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the raw analysis result as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write flagged transactions to this CSV file")
	return cmd
}

func writeCSV(path string, result models.AnalysisResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	e := &dashboard.CSVExporter{IncludeInsight: true}
	if err := e.Write(f, result); err != nil {
		return err
	}
	return f.Close()
}
