package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/insightdelivered/expense-insight/internal/models"
)

// CSVExporter writes the flagged transactions of a result as CSV.
type CSVExporter struct {
	IncludeInsight bool
}

// Write writes the anomalies in CSV format to the given writer.
func (e *CSVExporter) Write(out io.Writer, result models.AnalysisResult) error {
	writer := csv.NewWriter(out)

	// Insight as a comment row ahead of the table
	if e.IncludeInsight && result.Insight != "" {
		if err := writer.Write([]string{"# Insight", result.Insight}); err != nil {
			return fmt.Errorf("failed to write CSV insight: %w", err)
		}
	}

	header := []string{"Date", "Description", "Category", "Amount"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range result.Anomalies {
		row := []string{
			txn.Date,
			txn.Description,
			txn.Category,
			strconv.FormatFloat(txn.Amount, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
