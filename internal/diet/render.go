package diet

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown format")

// Format selects how a report is rendered.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "table", "text":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (use markdown|table|json|yaml)", ErrUnknownFormat, s)
}

// Header returns the column titles for unit, in display order.
func Header(u Unit) []string {
	return []string{
		"Column",
		"Current dtype",
		"Proposed dtype",
		fmt.Sprintf("Current Memory (%s)", u),
		fmt.Sprintf("Proposed Memory (%s)", u),
		fmt.Sprintf("Ram Usage Improvement (%s)", u),
		"Ram Usage Improvement (%)",
	}
}

// Cells renders one row for display. Absent values are "-".
func (r Row) Cells(u Unit) []string {
	proposed := "-"
	if r.ProposedKind != nil {
		proposed = r.ProposedKind.String()
	}
	cells := []string{r.Column, r.CurrentKind.String(), proposed, FormatAmount(r.Current(u), u)}
	if v, ok := r.Proposed(u); ok {
		cells = append(cells, FormatAmount(v, u))
	} else {
		cells = append(cells, "-")
	}
	if v, ok := r.Improvement(u); ok {
		cells = append(cells, FormatAmount(v, u))
	} else {
		cells = append(cells, "-")
	}
	if v, ok := r.ImprovementPct(); ok {
		cells = append(cells, fmt.Sprintf("%.1f", v))
	} else {
		cells = append(cells, "-")
	}
	return cells
}

// FormatAmount renders a scaled size: whole bytes, four significant digits
// for larger units.
func FormatAmount(v float64, u Unit) string {
	if u == Byte {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.4g", v)
}

// Markdown renders the report as bracketed sections with a pipe table.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DTYPE REPORT]\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))
	b.WriteString(fmt.Sprintf("Unit: %s\n", r.Unit))
	if r.Approximate {
		b.WriteString("Comparison: approximate (values may change within tolerance)\n")
	}
	b.WriteString("\n[COLUMNS]\n")
	head := Header(r.Unit)
	b.WriteString("| " + strings.Join(head, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(head)) + "\n")
	for _, row := range r.Columns {
		cells := row.Cells(r.Unit)
		for i := range cells {
			cells[i] = safeCell(cells[i])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	t := r.Totals()
	b.WriteString("\n[TOTALS]\n")
	b.WriteString(fmt.Sprintf("- current: %s %s\n", FormatAmount(r.Unit.Scale(t.CurrentBytes), r.Unit), r.Unit))
	b.WriteString(fmt.Sprintf("- proposed: %s %s\n", FormatAmount(r.Unit.Scale(t.ProposedBytes), r.Unit), r.Unit))
	b.WriteString(fmt.Sprintf("- saved: %s %s (%.1f%%)\n", FormatAmount(r.Unit.Scale(t.SavedBytes), r.Unit), r.Unit, t.SavedPct()))
	return b.String()
}

// Table renders the report as an aligned plain-text table.
func (r *Report) Table() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(Header(r.Unit), "\t"))
	for _, row := range r.Columns {
		fmt.Fprintln(tw, strings.Join(row.Cells(r.Unit), "\t"))
	}
	_ = tw.Flush()
	return b.String()
}

// Encode writes the report to w in format.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, r.Markdown())
		return err
	case FormatTable:
		_, err := io.WriteString(w, r.Table())
		return err
	case FormatJSON:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		b = append(b, '\n')
		_, err = w.Write(b)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func safeCell(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
