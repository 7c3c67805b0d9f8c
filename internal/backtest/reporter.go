package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
)

// GenerateConsoleReport formats a report for terminal output
func GenerateConsoleReport(report *Report) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Window: [%d, %d]\n", report.StartIndex, report.EndIndex))
	builder.WriteString(fmt.Sprintf("Rules: %d\n", len(report.Rules)))
	builder.WriteString(fmt.Sprintf("Total Profit: %.2f\n", report.Result.TotalProfit))
	builder.WriteString(fmt.Sprintf("Trades: %d (won %d, lost %d, forced %d)\n",
		report.Metrics.TotalTrades, report.Metrics.WinningTrades, report.Metrics.LosingTrades, report.Metrics.ForcedCloses))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", report.Metrics.WinRate*100))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", report.Metrics.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f\n", report.Metrics.MaxDrawdown))

	if len(report.Result.Transactions) > 0 {
		builder.WriteString("\n")
		writeTransactionTable(&builder, report)
	}
	return builder.String()
}

func writeTransactionTable(w io.Writer, report *Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Type", "Symbol", "Tick", "Price", "Profit"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, row := range transactionRows(report) {
		table.Append([]string{
			strconv.Itoa(i + 1),
			row.Type,
			row.Symbol,
			strconv.Itoa(row.Index),
			strconv.FormatFloat(row.Price, 'f', 2, 64),
			row.Profit,
		})
	}
	table.Render()
}

// transactionRow is the flat CSV shape of a transaction
type transactionRow struct {
	Type   string  `csv:"type"`
	Symbol string  `csv:"symbol"`
	Index  int     `csv:"index"`
	Time   string  `csv:"time"`
	Price  float64 `csv:"price"`
	Profit string  `csv:"profit"`
}

func transactionRows(report *Report) []*transactionRow {
	rows := make([]*transactionRow, 0, len(report.Result.Transactions))
	for _, tx := range report.Result.Transactions {
		row := &transactionRow{
			Type:   string(tx.Type),
			Symbol: tx.Symbol,
			Index:  tx.Index,
			Price:  tx.Price,
		}
		if !tx.Time.IsZero() {
			row.Time = tx.Time.UTC().Format(time.RFC3339)
		}
		if tx.Profit != nil {
			row.Profit = strconv.FormatFloat(*tx.Profit, 'f', 2, 64)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteTransactionsCSV writes the transactions of a report as CSV
func WriteTransactionsCSV(report *Report, w io.Writer) error {
	rows := transactionRows(report)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to marshal transactions csv: %w", err)
	}
	return nil
}

// ExportTransactionsCSV writes the transactions of a report to a CSV file
func ExportTransactionsCSV(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create csv export: %w", err)
	}
	defer file.Close()
	return WriteTransactionsCSV(report, file)
}

// ExportJSON writes the full report as indented JSON
func ExportJSON(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}
