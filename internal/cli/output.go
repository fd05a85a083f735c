package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/pratik-mahalle/lessonplanner/pkg/client"
)

// Table collects rows and renders them as aligned columns
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row, padding or clipping it to the header width
func (t *Table) AddRow(cols ...string) {
	row := make([]string, len(t.headers))
	copy(row, cols)
	t.rows = append(t.rows, row)
}

// Render writes the table to stdout.
func (t *Table) Render() {
	_ = t.RenderTo(os.Stdout)
}

// RenderTo writes the header, a dashed rule and the rows to out
func (t *Table) RenderTo(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	rule := make([]string, len(t.headers))
	for i, h := range t.headers {
		rule[i] = strings.Repeat("-", utf8.RuneCountInString(h))
	}

	fmt.Fprintln(w, strings.Join(t.headers, "\t"))
	fmt.Fprintln(w, strings.Join(rule, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// printOutput prints data as json or yaml. Table output is rendered by each
// command, so "table" falls back to json here.
func printOutput(data interface{}) error {
	return writeOutput(os.Stdout, getOutputFormat(), data)
}

func writeOutput(out io.Writer, format string, data interface{}) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// truncate shortens s to maxLen runes, ending in "..." when cut
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// formatTier returns a tier string with visual indicator.
func formatTier(tier string) string {
	switch strings.ToLower(tier) {
	case "premium":
		return "[P] premium"
	case "basic":
		return "[B] basic"
	case "free":
		return "[F] free"
	default:
		return tier
	}
}

// formatUsage renders "used / limit" with the remaining count.
func formatUsage(used int64, limit client.Limit) string {
	if limit.Unlimited {
		return fmt.Sprintf("%d / unlimited", used)
	}
	remaining := limit.Value - used
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%d / %d (%d left)", used, limit.Value, remaining)
}

// formatDate renders a timestamp as a short local date, or "-" when unset.
func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}
