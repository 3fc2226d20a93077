package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/kdeps/pkg/deps"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Run Summary
// =============================================================================

// printSummary prints the outcome of a fetch run.
func printSummary(res *deps.Result, outputDir string) {
	s := res.Stats
	switch {
	case s.DownloadFailed > 0:
		printError("%d of %d artifacts failed to download", s.DownloadFailed, s.Visited)
	default:
		printSuccess("%d artifacts in %s", s.Downloaded+s.SkippedExisting, outputDir)
	}
	fmt.Println(statsLine(s))

	if s.MetadataFailed > 0 {
		printWarning("%d POM files could not be fetched or parsed", s.MetadataFailed)
	}
	if s.Dropped > 0 {
		printWarning("%d declarations dropped", s.Dropped)
		for _, d := range res.Diagnostics {
			printDetail("%s: %s", d.Parent, d.Warning)
		}
	}
	for _, sp := range res.VersionSpread() {
		printInfo("%s resolved at %d versions", sp.Module, len(sp.Versions))
		printDetail("%s", strings.Join(sp.Versions, ", "))
	}
}

// statsLine renders the run counters on a single dim line.
func statsLine(s deps.Stats) string {
	parts := []string{
		StyleNumber.Render(fmt.Sprint(s.Downloaded)) + StyleDim.Render(" downloaded"),
		StyleNumber.Render(fmt.Sprint(s.SkippedExisting)) + StyleDim.Render(" existing"),
	}
	for _, p := range []struct {
		n     int
		label string
	}{
		{s.Excluded, "excluded"},
		{s.Filtered, "filtered"},
		{s.Pruned, "pruned"},
	} {
		if p.n > 0 {
			parts = append(parts, StyleNumber.Render(fmt.Sprint(p.n))+StyleDim.Render(" "+p.label))
		}
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}
