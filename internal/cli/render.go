package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/tags"
)

var (
	okColor      = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.Bold)
	addedColor   = color.New(color.FgGreen)
	updatedColor = color.New(color.FgYellow)
	removedColor = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

func okMark() string   { return okColor.Sprint("✓") }
func failMark() string { return failColor.Sprint("✗") }

// writeTable renders rows under a bold header with padded columns.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = headerColor.Sprint(pad(h, widths[i]))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = pad(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatConfiguration renders key=value pairs with sorted keys.
func formatConfiguration(cfg map[string]string) string {
	if len(cfg) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + cfg[k]
	}
	return strings.Join(parts, " ")
}

// writeRecords renders records as an item/value/configuration table.
func writeRecords(w io.Writer, records []ir.Metadata) {
	if len(records) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("No records."))
		return
	}
	rows := make([][]string, len(records))
	for i, md := range records {
		rows[i] = []string{md.UID.ItemName, md.Value, formatConfiguration(md.Configuration)}
	}
	writeTable(w, []string{"ITEM", "VALUE", "CONFIGURATION"}, rows)
}

// writeChange renders one change on a single line, colored by kind.
func writeChange(w io.Writer, c ir.Change) {
	var kind string
	switch c.Kind {
	case ir.ChangeAdded:
		kind = addedColor.Sprintf("%-7s", c.Kind)
	case ir.ChangeUpdated:
		kind = updatedColor.Sprintf("%-7s", c.Kind)
	case ir.ChangeRemoved:
		kind = removedColor.Sprintf("%-7s", c.Kind)
	default:
		kind = fmt.Sprintf("%-7s", c.Kind)
	}

	md := c.Record()
	line := fmt.Sprintf("%4d %s %s %s %s", c.Seq, kind, c.ItemName, md.Value, formatConfiguration(md.Configuration))
	if c.Kind == ir.ChangeUpdated && c.Old != nil {
		line += dimColor.Sprintf(" (was %s %s)", c.Old.Value, formatConfiguration(c.Old.Configuration))
	}
	fmt.Fprintln(w, line)
}

// writeTags renders the taxonomy as a uid/label table.
func writeTags(w io.Writer, all []tags.Tag) {
	rows := make([][]string, len(all))
	for i, t := range all {
		rows[i] = []string{t.UID, t.Label, strings.Join(t.Synonyms, ", ")}
	}
	writeTable(w, []string{"UID", "LABEL", "SYNONYMS"}, rows)
}
