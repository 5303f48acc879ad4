package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wonny/propopol/internal/brain"
	"github.com/wonny/propopol/internal/report"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunMetadata holds the header fields of a run
type RunMetadata struct {
	Title   string
	RunID   string
	Date    string
	History string
	Source  string
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(meta RunMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.Title)
	PrintSeparator()
	if meta.RunID != "" {
		fmt.Printf("  Run ID    : %s\n", meta.RunID)
	}
	fmt.Printf("  Date      : %s\n", meta.Date)
	if meta.History != "" {
		fmt.Printf("  History   : %s\n", meta.History)
	}
	if meta.Source != "" {
		fmt.Printf("  Source    : %s\n", meta.Source)
	}
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row; widths count runes so 한글 names line up roughly
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Print(val)
		if pad := widths[i] - utf8.RuneCountInString(val); pad > 0 {
			fmt.Print(strings.Repeat(" ", pad))
		}
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// printRunResult prints the outcome of a prediction run
func printRunResult(result *brain.RunResult) {
	fmt.Println()
	if result.Success {
		PrintSuccess("Prediction Run Completed")
	} else {
		PrintError("Prediction Run Failed")
	}
	fmt.Println()

	PrintKeyValue("Run ID", result.RunID, 10)
	PrintKeyValue("Date", result.Date.Format("2006-01-02"), 10)
	PrintKeyValue("Duration", fmt.Sprintf("%.2fs", result.Duration.Seconds()), 10)
	fmt.Println()

	fmt.Println("Completed Stages:")
	for _, stage := range result.CompletedStages {
		fmt.Printf("  ✅ %s\n", stage)
	}
	fmt.Println()

	if result.QualitySnapshot != nil {
		fmt.Printf("Dataset: %d entities, %d observations (quality %.2f)\n",
			result.QualitySnapshot.TotalEntities,
			result.QualitySnapshot.Observations,
			result.QualitySnapshot.QualityScore)
	}
	if result.Universe != nil {
		fmt.Printf("Filter: %d eligible, %d skipped\n", len(result.Universe.Series), len(result.Universe.Excluded))
	}

	r := result.Report
	if r == nil {
		return
	}
	fmt.Printf("Forecast: %d processed, %d failed\n", r.Processed, len(r.Failed))
	if r.Aborted {
		PrintWarning(fmt.Sprintf("Time budget exceeded: %d of %d entities not forecast", r.Pending(), r.Eligible))
	}

	if len(r.Entries) == 0 {
		PrintInfo("No entity ranked")
		return
	}

	fmt.Println()
	fmt.Println(r.Title())
	widths := []int{4, 24, 14, 14, 14}
	PrintTableHeader([]string{"#", "corp", "current", "prediction", "profit"}, widths)
	for _, e := range r.Entries {
		PrintTableRow([]string{
			fmt.Sprintf("%d", e.Rank),
			e.Label,
			report.FormatPrice(e.CurrentPrice),
			report.FormatPrice(e.PredictedPrice),
			report.FormatPrice(e.ExpectedProfit),
		}, widths)
	}
}
