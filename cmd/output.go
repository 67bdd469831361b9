package cmd

import (
	"fmt"
	"io"
	"strconv"

	"docweave/pkg/combine"
	"docweave/pkg/scan"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func printScanSummary(w io.Writer, res *scan.Result, structurePath string) {
	fmt.Fprintln(w, successStyle.Render("Structure saved to "+structurePath))
	renderTable(w, pterm.TableData{
		{"Scan", "Count"},
		{"Matched files", strconv.Itoa(res.Report.Matched)},
		{"In structure", strconv.Itoa(res.Report.Embedded)},
		{"Too large", strconv.Itoa(res.Report.Oversized)},
		{"Ignored", strconv.Itoa(res.Report.Ignored)},
		{"Binary", strconv.Itoa(res.Report.Binary)},
		{"Hidden", strconv.Itoa(res.Report.Hidden)},
		{"Failed", strconv.Itoa(res.Report.Failed)},
	})
}

func printCombineSummary(w io.Writer, doc *combine.Document) {
	fmt.Fprintln(w, successStyle.Render("Combined document saved to "+doc.Output))
	if len(doc.Failed) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d file(s) could not be read and were left out", len(doc.Failed))))
	}
	renderTable(w, pterm.TableData{
		{"Processing statistics", "Value"},
		{"Files embedded", strconv.Itoa(doc.Files)},
		{"Total content size", fmt.Sprintf("%d bytes (%dKB)", doc.Stats.TotalBytes, (doc.Stats.TotalBytes+512)/1024)},
		{"Total chunks", strconv.Itoa(doc.Stats.Chunks)},
		{"Average chunk size", fmt.Sprintf("%d bytes", doc.Stats.AverageChunkSize)},
	})
}

func renderTable(w io.Writer, data pterm.TableData) {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		for _, row := range data {
			fmt.Fprintln(w, row)
		}
		return
	}
	fmt.Fprintln(w, table)
}
