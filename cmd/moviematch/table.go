package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatTSV   = "tsv"
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderTSV writes tab separated rows without a header, for piping into
// other tools. Tabs and newlines inside cells are flattened to spaces.
func renderTSV(rows [][]string) string {
	var b strings.Builder
	replacer := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(replacer.Replace(cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// writeRows renders rows as a table for terminals and TSV otherwise, unless
// format forces one of them.
func writeRows(w io.Writer, format string, headers []string, rows [][]string, aligns []columnAlignment) error {
	useTable := false
	switch format {
	case formatTable:
		useTable = true
	case formatTSV:
	default:
		useTable = isTerminal(w)
	}
	var out string
	if useTable {
		out = renderTable(headers, rows, aligns) + "\n"
	} else {
		out = renderTSV(rows)
	}
	_, err := io.WriteString(w, out)
	return err
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func validateFormat(format string) error {
	switch format {
	case formatAuto, formatTable, formatTSV:
		return nil
	default:
		return fmt.Errorf("unsupported --format %q (use auto, table or tsv)", format)
	}
}
