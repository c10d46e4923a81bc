// Package output provides utilities for formatting and displaying sizing results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iwvelando/staffing-forecast/internal/sizing"
	"github.com/iwvelando/staffing-forecast/pkg/format"
	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
)

// csvDecimals bounds the precision of figures in CSV output.
const csvDecimals = 4

var taskHeader = []string{"scenario", "center", "task", "family", "unit", "phase", "daily_units", "hours"}

var summaryHeader = []string{
	"scenario", "center", "total_hours", "net_capacity_hours_per_fte", "fte_raw", "fte_rounded",
	"actual_mod", "actual_moi", "actual_aps",
	"target_mod", "target_moi", "target_aps",
	"final_mod", "final_moi", "final_aps",
	"gap_mod", "gap_moi", "gap_aps",
}

// PrettyFormat writes a human-readable rather than machine-readable table
// for every result, using the number separators of locale.
func PrettyFormat(w io.Writer, results []sizing.RunResult, locale string) error {
	p := format.NewPrinter(locale)
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	for i, run := range results {
		res := run.Result
		fmt.Fprintf(tw, "--- Results for scenario %s (%s) ---\n", run.Name, run.Center)
		fmt.Fprintf(tw, "Task\t| Unit\t| Daily units\t| Hours\n")
		fmt.Fprintf(tw, "____\t| ____\t| ___________\t| _____\n")
		for _, load := range res.PerTask {
			fmt.Fprintf(tw, "%s\t| %s\t| %s\t| %s\n", load.Task, load.Unit, p.Decimal(load.DailyUnits, 2), p.Hours(load.Hours))
		}
		fmt.Fprintf(tw, "\n")
		fmt.Fprintf(tw, "Total hours: %s\n", p.Hours(res.TotalHours))
		fmt.Fprintf(tw, "Net capacity per FTE: %s h\n", p.Hours(res.NetCapacityHoursPerFTE))
		fmt.Fprintf(tw, "FTE: %s (rounded %s)\n", p.FTE(res.FTERaw), p.Headcount(res.FTERounded))
		fmt.Fprintf(tw, "\n")
		fmt.Fprintf(tw, "Category\t| Actual\t| Target\t| Final\t| Gap\n")
		fmt.Fprintf(tw, "________\t| ______\t| ______\t| _____\t| ___\n")
		for _, row := range categoryRows(res) {
			fmt.Fprintf(tw, "%s\t| %s\t| %s\t| %s\t| %s\n", row.category,
				p.Headcount(row.actual), p.Headcount(row.target), p.Headcount(row.final), p.Signed(row.gap))
		}
		if len(res.Diagnostics) > 0 {
			fmt.Fprintf(tw, "\nDiagnostics:\n")
			for _, diag := range res.Diagnostics {
				fmt.Fprintf(tw, "  - %s\n", diag)
			}
		}
		if i < len(results)-1 {
			fmt.Fprintf(tw, "\n")
		}
	}

	return tw.Flush()
}

type categoryRow struct {
	category                   sizing.Category
	actual, target, final, gap float64
}

func categoryRows(res sizing.SimulationResult) []categoryRow {
	return []categoryRow{
		{sizing.CategoryMOD, res.Actual.MOD, res.Target.MOD, res.Final.MOD, res.Gap.MOD},
		{sizing.CategoryMOI, res.Actual.MOI, res.Target.MOI, res.Final.MOI, res.Gap.MOI},
		{sizing.CategoryAPS, res.Actual.APS, res.Target.APS, res.Final.APS, res.Gap.APS},
	}
}

// CsvFormat outputs the per-task rows of every result, a blank line and the
// summary rows, in comma-separated value format.
func CsvFormat(w io.Writer, results []sizing.RunResult) error {
	if err := TasksCsv(w, results); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return SummaryCsv(w, results)
}

// TasksCsv writes one row per task and result.
func TasksCsv(w io.Writer, results []sizing.RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taskHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, run := range results {
		for _, load := range run.Result.PerTask {
			record := []string{
				run.Name, run.Center, load.Task, load.Family, load.Unit, load.Phase,
				number(load.DailyUnits), number(load.Hours),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv row for task %q: %w", load.Task, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryCsv writes one summary row per result.
func SummaryCsv(w io.Writer, results []sizing.RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, run := range results {
		res := run.Result
		record := []string{
			run.Name, run.Center,
			number(res.TotalHours), number(res.NetCapacityHoursPerFTE), number(res.FTERaw), number(res.FTERounded),
		}
		for _, hc := range []sizing.Headcount{res.Actual, res.Target, res.Final, res.Gap} {
			record = append(record, number(hc.MOD), number(hc.MOI), number(hc.APS))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv summary for scenario %q: %w", run.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvString returns the per-task CSV of results.
func CsvString(results []sizing.RunResult) (string, error) {
	var buf bytes.Buffer
	if err := TasksCsv(&buf, results); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func number(value float64) string {
	return strconv.FormatFloat(mathutil.Round(value, csvDecimals), 'f', -1, 64)
}
