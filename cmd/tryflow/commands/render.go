package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

const (
	jsonIndent      = "  "
	yamlIndent      = 2
	estimatedMarker = "~"
	totalsLabel     = "TOTAL"
	avgPrecision    = 2

	// Columns 2 through 9 of the table are numeric.
	firstNumericColumn = 2
	lastNumericColumn  = 9
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

var warnColor = color.New(color.FgYellow)

func validateFormat(format string) error {
	switch format {
	case FormatJSON, FormatYAML, FormatTable:
		return nil
	default:
		return fmt.Errorf("%w %q (want %s, %s or %s)", ErrUnknownFormat, format, FormatJSON, FormatYAML, FormatTable)
	}
}

// writeDocument renders doc in the requested format.
func writeDocument(w io.Writer, doc *gitmetrics.GitMetrics, format string, now time.Time) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", jsonIndent)

		encodeErr := enc.Encode(doc)
		if encodeErr != nil {
			return fmt.Errorf("encode json: %w", encodeErr)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		encodeErr := enc.Encode(doc)
		if encodeErr != nil {
			return fmt.Errorf("encode yaml: %w", encodeErr)
		}

		closeErr := enc.Close()
		if closeErr != nil {
			return fmt.Errorf("flush yaml: %w", closeErr)
		}

		return nil
	case FormatTable:
		return writeTable(w, doc, now)
	default:
		return validateFormat(format)
	}
}

func writeTable(w io.Writer, doc *gitmetrics.GitMetrics, now time.Time) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Block %s  %s → %s", doc.BlockID,
		doc.DateRange.Start.Format(time.DateOnly), doc.DateRange.End.Format(time.DateOnly))

	tw.AppendHeader(table.Row{
		"Repository", "Commits", "Lines +", "Lines -", "Files", "Tests", "Docs", "Avg/day", "Active days",
	})

	names := make([]string, 0, len(doc.Repositories))
	for name := range doc.Repositories {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		tw.AppendRow(metricsRow(name, doc.Repositories[name]))
	}

	tw.AppendFooter(metricsRow(totalsLabel, doc.Totals))
	tw.SetColumnConfigs(numericColumns())
	tw.SetCaption("%s", caption(doc, now))

	tw.Render()

	return nil
}

func metricsRow(name string, m gitmetrics.RepoMetrics) table.Row {
	return table.Row{
		name,
		humanize.Comma(int64(m.Commits)),
		estimate(m, humanize.Comma(int64(m.LinesAdded))),
		estimate(m, humanize.Comma(int64(m.LinesRemoved))),
		estimate(m, humanize.Comma(int64(m.FilesChanged))),
		estimate(m, humanize.Comma(int64(m.TestFilesChanged))),
		estimate(m, humanize.Comma(int64(m.DocFilesChanged))),
		humanize.FtoaWithDigits(m.AvgCommitsPerDay, avgPrecision),
		len(m.FirstCommitTimes),
	}
}

func estimate(m gitmetrics.RepoMetrics, value string) string {
	if !m.Estimated {
		return value
	}

	return warnColor.Sprint(estimatedMarker) + value
}

func numericColumns() []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, lastNumericColumn-firstNumericColumn+1)

	for col := firstNumericColumn; col <= lastNumericColumn; col++ {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}

	return configs
}

func caption(doc *gitmetrics.GitMetrics, now time.Time) string {
	parts := []string{"computed " + humanize.RelTime(doc.ComputedAt, now, "ago", "from now")}

	var estimated []string

	for name, m := range doc.Repositories {
		if m.Estimated {
			estimated = append(estimated, fmt.Sprintf("%s (%d sampled)", name, m.SampledCommits))
		}
	}

	if len(estimated) > 0 {
		slices.Sort(estimated)
		parts = append(parts, warnColor.Sprintf("%s estimated from samples: %s",
			estimatedMarker, strings.Join(estimated, ", ")))
	}

	return strings.Join(parts, "; ")
}
