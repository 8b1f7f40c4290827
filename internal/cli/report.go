package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/flowstudio/internal/presentation/tui"
	"github.com/aretw0/flowstudio/pkg/validation"
)

// ReportFormat selects how a validation report is printed.
type ReportFormat string

const (
	FormatText     ReportFormat = "text"
	FormatMarkdown ReportFormat = "markdown"
	FormatJSON     ReportFormat = "json"
)

// ParseReportFormat validates a format name.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(s); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: want text, markdown or json", s)
	}
}

// WriteReport prints report to w. Markdown is rendered with glamour when w is
// a terminal.
func WriteReport(w io.Writer, report validation.Report, format ReportFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			OK bool `json:"ok"`
			validation.Report
			Internal []string `json:"internal,omitempty"`
		}{report.OK(), report, internalMessages(report)})
	case FormatMarkdown:
		md := ReportMarkdown(report)
		if tui.IsTerminal(w) {
			rendered, err := tui.NewRenderer()(md)
			if err == nil {
				md = rendered
			}
		}
		_, err := io.WriteString(w, md)
		return err
	default:
		_, err := io.WriteString(w, ReportText(report, tui.NewStyler(w)))
		return err
	}
}

func internalMessages(report validation.Report) []string {
	var out []string
	for _, e := range report.Internal {
		out = append(out, e.Error())
	}
	return out
}

// ReportText lists the failing nodes, one error per line.
func ReportText(report validation.Report, style tui.Styler) string {
	var b strings.Builder
	for _, e := range report.Internal {
		fmt.Fprintf(&b, "%s %s\n", style.Error("internal:"), e.Error())
	}
	for _, msg := range report.Errors {
		fmt.Fprintf(&b, "%s %s\n", style.Error("flow:"), msg)
	}
	failed := report.Failed()
	for _, n := range failed {
		fmt.Fprintf(&b, "%s %s\n", style.Error(n.ID), style.Faint(fmt.Sprintf("(%s %s)", n.Kind, n.Type)))
		for _, msg := range n.Result.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	if report.OK() {
		fmt.Fprintf(&b, "%s %d nodes checked\n", style.OK("Flow is valid!"), len(report.Nodes))
	} else {
		fmt.Fprintf(&b, "%d of %d nodes have errors\n", len(failed), len(report.Nodes))
	}
	return b.String()
}

// ReportMarkdown formats the report as a markdown document.
func ReportMarkdown(report validation.Report) string {
	var b strings.Builder
	b.WriteString("# Validation report\n\n")
	failed := report.Failed()
	if report.OK() {
		fmt.Fprintf(&b, "**Flow is valid.** %d nodes checked.\n", len(report.Nodes))
		return b.String()
	}
	fmt.Fprintf(&b, "**%d of %d nodes have errors.**\n", len(failed), len(report.Nodes))

	if len(report.Internal) > 0 || len(report.Errors) > 0 {
		b.WriteString("\n## Flow\n\n")
		for _, e := range report.Internal {
			fmt.Fprintf(&b, "- internal: %s\n", e.Error())
		}
		for _, msg := range report.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	for _, n := range failed {
		fmt.Fprintf(&b, "\n## `%s`\n\n_%s %s_\n\n", n.ID, n.Kind, n.Type)
		for _, msg := range n.Result.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	return b.String()
}
