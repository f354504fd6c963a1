package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/expense-insight/internal/config"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "expense-insight",
		Short: "AI Expense Tracker front-end",
		Long: `AI Expense Tracker front-end
by Insight Delivered

Upload a bank statement (CSV, PDF) or a photo of one to the analysis
service and view the AI insight, a daily spending chart and the
transactions flagged as emotional spending.

Accepted files: .csv .pdf .jpg .jpeg .png .webp .heic .heif`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./.expense-insight.yaml)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("expense-insight %s (%s) built on %s\n", version, commit, date)
			fmt.Printf("Go version: %s\n", runtime.Version())
		},
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
