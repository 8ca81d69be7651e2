package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// Style definitions.
var (
	// HeaderStyle for table headers.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	// CellStyle for table cells.
	CellStyle = lipgloss.NewStyle().Padding(0, 1)

	// BorderStyle for table borders.
	BorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}

			return CellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())

	return err
}

func printStocks(w io.Writer, stocks []types.Stock) error {
	rows := make([][]string, 0, len(stocks))
	for _, stock := range stocks {
		rows = append(rows, []string{stock.ID, stock.Name, stock.List})
	}

	return renderTable(w, []string{"ID", "NAME", "LIST"}, rows)
}

func printSignals(w io.Writer, signals []types.Signal) error {
	rows := make([][]string, 0, len(signals))
	for _, signal := range signals {
		rows = append(rows, []string{
			types.DateKey(signal.Date),
			signal.Stock.ID,
			signal.Stock.List,
			string(signal.Action),
			string(signal.Type),
			fmt.Sprintf("%.2f", signal.Price),
		})
	}

	return renderTable(w, []string{"DATE", "STOCK", "LIST", "ACTION", "TYPE", "PRICE"}, rows)
}

func printPendingSignals(w io.Writer, pending []types.PendingSignal) error {
	rows := make([][]string, 0, len(pending))
	for _, signal := range pending {
		rows = append(rows, []string{
			types.DateKey(signal.SignalDate),
			signal.Stock.ID,
			signal.Stock.List,
			string(signal.Action),
			string(signal.Type),
			fmt.Sprintf("%.2f", signal.ReferencePrice),
		})
	}

	return renderTable(w, []string{"SIGNAL DATE", "STOCK", "LIST", "ACTION", "TYPE", "REFERENCE"}, rows)
}

func printTrades(w io.Writer, trades []*types.Trade) error {
	rows := make([][]string, 0, len(trades))
	for _, trade := range trades {
		rows = append(rows, []string{
			types.DateKey(trade.Entry.Date),
			types.DateKey(trade.Exit.Date),
			trade.Stock.ID,
			fmt.Sprintf("%.2f", trade.Entry.Price),
			fmt.Sprintf("%.2f", trade.Exit.Price),
			fmt.Sprintf("%.2f", trade.ResultPercent()*100),
		})
	}

	return renderTable(w, []string{"ENTRY", "EXIT", "STOCK", "ENTRY PRICE", "EXIT PRICE", "RESULT %"}, rows)
}

func printAnalysis(w io.Writer, report types.AnalysisReport) error {
	return renderTable(w, []string{"METRIC", "VALUE"}, analysisRows(report))
}

func printRunStats(w io.Writer, stats types.RunStats) error {
	lists := strings.Join(stats.Lists, ", ")
	if lists == "" {
		lists = "all"
	}

	rows := [][]string{
		{"id", stats.ID},
		{"timestamp", stats.Timestamp.Format("2006-01-02 15:04:05")},
		{"lists", lists},
		{"selection method", string(stats.SelectionMethod)},
		{"start capital", formatNumber(stats.StartCapital)},
		{"cash available", formatNumber(stats.CashAvailable)},
		{"final equity", formatNumber(stats.FinalEquity)},
		{"number of stocks", fmt.Sprint(stats.NumberOfStocks)},
		{"signals not taken", fmt.Sprint(stats.SignalsNotTaken)},
		{"total fees", formatNumber(stats.TotalFees)},
	}

	rows = append(rows, analysisRows(stats.Analysis)...)

	for _, warning := range stats.Warnings {
		rows = append(rows, []string{"warning", warning})
	}

	return renderTable(w, []string{"METRIC", "VALUE"}, rows)
}

func analysisRows(report types.AnalysisReport) [][]string {
	return [][]string{
		{"number of trades", fmt.Sprint(report.NumberOfTrades)},
		{"wins", fmt.Sprint(report.Wins)},
		{"losses", fmt.Sprint(report.Losses)},
		{"win rate", formatNumber(report.WinRate)},
		{"lose rate", formatNumber(report.LoseRate)},
		{"total gains", formatNumber(report.TotalGains)},
		{"total loss", formatNumber(report.TotalLoss)},
		{"average trade", formatNumber(report.AverageTrade)},
		{"average win", formatNumber(report.AverageWin)},
		{"average loss", formatNumber(report.AverageLoss)},
		{"max gain", formatNumber(report.MaxGain)},
		{"max loss", formatNumber(report.MaxLoss)},
		{"gain loss ratio", formatNumber(report.GainLossRatio)},
		{"profit factor", formatNumber(report.ProfitFactor)},
		{"trade std", formatOptional(report.TradeSTD)},
		{"win std", formatOptional(report.WinSTD)},
		{"loss std", formatOptional(report.LossSTD)},
	}
}

func formatNumber(value float64) string {
	return fmt.Sprintf("%.4f", value)
}

// formatOptional prints n/a for a value that could not be computed.
func formatOptional(value *float64) string {
	if value == nil {
		return "n/a"
	}

	return formatNumber(*value)
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
