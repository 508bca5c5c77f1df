package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"autoremediator/internal/remediation"
)

// OutputFormatType defines the format types for the remediation report.
type OutputFormatType string

const (
	// OutputFormatTypeJSON represents JSON output format
	OutputFormatTypeJSON OutputFormatType = "JSON"
	// OutputFormatTypeYAML represents YAML output format
	OutputFormatTypeYAML OutputFormatType = "YAML"
	// OutputFormatTypeTABLE represents table output format
	OutputFormatTypeTABLE OutputFormatType = "TABLE"
)

// EventReport is the result of one replayed event file.
type EventReport struct {
	Source string             `json:"source" yaml:"source"`
	Result remediation.Result `json:"result" yaml:"result"`
}

// PrintReport writes the reports to w using the specified output format.
func PrintReport(w io.Writer, reports []EventReport, outputFormat OutputFormatType) error {
	switch outputFormat {
	case OutputFormatTypeJSON:
		return printJSONReport(w, reports)
	case OutputFormatTypeYAML:
		return printYAMLReport(w, reports)
	case OutputFormatTypeTABLE:
		return printTableReport(w, reports)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func printJSONReport(w io.Writer, reports []EventReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling report to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printYAMLReport(w io.Writer, reports []EventReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("error marshaling report to YAML: %w", err)
	}
	return enc.Close()
}

// printTableReport prints one row per outcome, grouped by event
func printTableReport(w io.Writer, reports []EventReport) error {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, r := range reports {
		res := r.Result
		fmt.Fprintf(writer, "\nEVENT:\t%s\n", r.Source)
		fmt.Fprintf(writer, "PIPELINE:\t%s\n", valueOrNone(res.Pipeline))
		fmt.Fprintf(writer, "STATUS:\t%s\n", res.Status)
		if res.Message != "" {
			fmt.Fprintf(writer, "MESSAGE:\t%s\n", res.Message)
		}
		if res.Error != "" {
			fmt.Fprintf(writer, "ERROR:\t%s\n", res.Error)
		}

		if len(res.Outcomes) > 0 {
			fmt.Fprintln(writer, "")
			fmt.Fprintln(writer, "TARGET\tACTION\tDETAIL")
			fmt.Fprintln(writer, "------\t------\t------")
			for _, o := range res.Outcomes {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", valueOrNone(o.Target), o.Action, o.Detail)
			}
		}
	}

	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, summary(reports))
	return writer.Flush()
}

func summary(reports []EventReport) string {
	counts := make(map[remediation.Status]int)
	for _, r := range reports {
		counts[r.Result.Status]++
	}

	var parts []string
	for _, s := range []remediation.Status{
		remediation.StatusSuccess,
		remediation.StatusFailed,
		remediation.StatusError,
		remediation.StatusSkipped,
		remediation.StatusNoActionTaken,
	} {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Summary: %d events", len(reports))
	}
	return fmt.Sprintf("Summary: %d events (%s)", len(reports), strings.Join(parts, ", "))
}

func valueOrNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

// DefaultPrinter is the default implementation of the report printer
type DefaultPrinter struct {
	Out io.Writer
}

// PrintReport implements the printer interface. A nil Out writes to stdout.
func (p DefaultPrinter) PrintReport(reports []EventReport, format OutputFormatType) error {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	return PrintReport(out, reports, format)
}
