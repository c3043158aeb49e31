package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"team-journal/internal/risk"
	"team-journal/pkg/utils"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && !color.NoColor && isTerminal(cmd.OutOrStdout()),
	}
}

// isTerminal checks if w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.line(color.New(color.FgGreen), format, args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.line(color.New(color.FgRed), format, args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.line(color.New(color.FgYellow), format, args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.line(color.New(color.FgCyan), format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.line(color.New(color.Bold), format, args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.line(color.New(color.Faint), format, args...)
}

func (o *Output) line(c *color.Color, format string, args ...interface{}) {
	fmt.Fprintln(o.writer, o.paint(c, fmt.Sprintf(format, args...)))
}

func (o *Output) paint(c *color.Color, text string) string {
	if o.colorEnabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// Green returns green colored text.
func (o *Output) Green(text string) string { return o.paint(color.New(color.FgGreen), text) }

// Red returns red colored text.
func (o *Output) Red(text string) string { return o.paint(color.New(color.FgRed), text) }

// Yellow returns yellow colored text.
func (o *Output) Yellow(text string) string { return o.paint(color.New(color.FgYellow), text) }

// DimText returns dimmed text.
func (o *Output) DimText(text string) string { return o.paint(color.New(color.Faint), text) }

// FormatR formats a signed R value, green when positive and red when negative.
func (o *Output) FormatR(r float64) string {
	formatted := utils.FormatR(r)
	switch {
	case r > 0:
		return o.Green(formatted)
	case r < 0:
		return o.Red(formatted)
	default:
		return formatted
	}
}

// RiskBanner prints the daily risk state for one user.
func (o *Output) RiskBanner(daily risk.DailyRisk, resetsIn string) {
	if daily.IsLocked {
		o.line(color.New(color.FgRed, color.Bold), "LOCKED  %s today (limit %s). Submissions reopen in %s.",
			utils.FormatR(daily.DisplayR()), utils.FormatR(risk.LockThresholdR), resetsIn)
		return
	}
	o.Printf("Today: %s over %d trade(s), %s left before the lock\n",
		o.FormatR(daily.DisplayR()), daily.TradeCount, utils.FormatR(daily.RemainingR()))
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		output:  output,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		padding := widths[i] - visibleLen(cell)
		if padding < 0 {
			padding = 0
		}
		padded := cell + strings.Repeat(" ", padding)
		if isHeader {
			padded = t.output.paint(color.New(color.Bold), padded)
		}
		parts = append(parts, padded)
	}
	t.output.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
}

func (t *Table) printSeparator(widths []int) {
	var parts []string
	for _, w := range widths {
		parts = append(parts, strings.Repeat("-", w))
	}
	t.output.Println(t.output.DimText(strings.Join(parts, "  ")))
}

// stripANSI removes ANSI escape codes from a string.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func visibleLen(s string) int {
	return len([]rune(stripANSI(s)))
}
