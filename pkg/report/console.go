package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/EgorDm/nauman/pkg/flow"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// DisableColors turns off ANSI escapes regardless of terminal detection.
func DisableColors() {
	colorsEnabled = false
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// PrintTaskStart prints the banner announcing a task. Hooks render in
// yellow, main tasks in green; skipped tasks are marked instead of echoed.
func PrintTaskStart(position, total int, task *flow.Task, willExecute bool) {
	banner := color(colorGreen)
	label := task.Name
	if task.IsHook {
		banner = color(colorYellow)
		label = task.Name + " (hook)"
	}

	fmt.Printf("\n%s[%d/%d]%s %s%s%s\n",
		color(colorCyan), position, total, color(colorReset),
		banner+color(colorBold), label, color(colorReset))
	if willExecute {
		fmt.Printf("%s$ %s%s\n", color(colorGray), task.Run, color(colorReset))
	} else {
		fmt.Printf("%s- skipped by policy%s\n", color(colorCyan), color(colorReset))
	}
}

// PrintTaskEnd prints a one-line verdict after a task finishes.
func PrintTaskEnd(task *flow.Task, result flow.TaskResult) {
	switch StatusOf(result) {
	case StatusSkipped:
		// The start banner already said so.
	case StatusFailed:
		fmt.Printf("%s✗ %s%s exited with code %d %s(%s)%s\n",
			color(colorRed), color(colorReset), task.Name, result.ExitCode,
			color(colorGray), formatTaskDuration(result), color(colorReset))
	default:
		fmt.Printf("%s✓ %s%s %s(%s)%s\n",
			color(colorGreen), color(colorReset), task.Name,
			color(colorGray), formatTaskDuration(result), color(colorReset))
	}
}

// PrintSummary prints the per-task table and totals for a finished run.
func PrintSummary(r *RunReport) {
	fmt.Println()
	if r.Summary.Passed > 0 {
		fmt.Printf("  %s%d tasks passing%s (%s)\n", color(colorGreen), r.Summary.Passed, color(colorReset), formatDuration(r.Duration))
	}
	if r.Summary.Failed > 0 {
		fmt.Printf("  %s%d tasks failing%s\n", color(colorRed), r.Summary.Failed, color(colorReset))
	}
	if r.Summary.Skipped > 0 {
		fmt.Printf("  %s%d tasks skipped%s\n", color(colorCyan), r.Summary.Skipped, color(colorReset))
	}
	fmt.Println()

	tableWidth := 78
	fmt.Println(strings.Repeat("═", tableWidth))
	fmt.Printf("  %-42s %6s %6s %10s\n", "Task", "Status", "Exit", "Duration")
	fmt.Println(strings.Repeat("─", tableWidth))

	for _, tr := range r.Tasks {
		var status, statusColor string
		switch tr.Status {
		case StatusFailed:
			status = "✗ FAIL"
			statusColor = color(colorRed)
		case StatusSkipped:
			status = "- SKIP"
			statusColor = color(colorCyan)
		default:
			status = "✓ PASS"
			statusColor = color(colorGreen)
		}

		name := tr.Name
		if tr.Hook {
			name += " (hook)"
		}
		name = truncate(name, 42)

		dur := "-"
		if tr.Duration != nil {
			dur = formatDuration(*tr.Duration)
		}
		fmt.Printf("  %-42s %s%6s%s %6d %10s\n",
			name, statusColor, status, color(colorReset), tr.ExitCode, dur)
	}

	fmt.Println(strings.Repeat("─", tableWidth))
	statusStr := fmt.Sprintf("%d/%d", r.Summary.Passed, r.Summary.Total)
	statusColor := color(colorGreen)
	if r.Status == StatusFailed {
		statusColor = color(colorRed)
	}
	fmt.Printf("  %s%-42s%s %s%6s%s %6s %10s\n",
		color(colorBold), "TOTAL", color(colorReset),
		statusColor, statusStr, color(colorReset),
		"", formatDuration(r.Duration))
	fmt.Println(strings.Repeat("═", tableWidth))
}

// truncate shortens s to at most max characters, counting runes so a
// multi-byte name is never cut mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func formatTaskDuration(r flow.TaskResult) string {
	if r.Duration == nil {
		return "-"
	}
	return formatDuration(r.Duration.Milliseconds())
}

// formatDuration formats milliseconds to a human-readable string.
// Shows milliseconds for values < 1s, seconds otherwise.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
