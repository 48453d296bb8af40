package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
)

const maxSheetName = 31

func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, s)
	if s == "" {
		s = "Report"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

func setCell(cell *xlsx.Cell, v string) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		cell.SetFloat(f)
		return
	}
	cell.SetValue(v)
}

// WriteXLSX renders doc as a workbook: a summary sheet followed by one sheet
// per table.
func WriteXLSX(w io.Writer, doc Document) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	summary.AddRow().AddCell().SetValue(doc.Title)
	if doc.Subtitle != "" {
		summary.AddRow().AddCell().SetValue(doc.Subtitle)
	}
	for _, f := range doc.Fields {
		row := summary.AddRow()
		row.AddCell().SetValue(f.Label)
		row.AddCell().SetValue(f.Value)
	}

	used := map[string]int{"Summary": 1}
	for i, t := range doc.Tables {
		name := t.Heading
		if name == "" {
			name = fmt.Sprintf("Table %d", i+1)
		}
		name = sheetName(name)
		if n := used[name]; n > 0 {
			suffix := fmt.Sprintf(" %d", n+1)
			name = sheetName(strings.TrimSpace(name[:min(len(name), maxSheetName-len(suffix))]) + suffix)
		}
		used[name]++

		sheet, err := file.AddSheet(name)
		if err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}
		header := sheet.AddRow()
		for _, c := range t.Columns {
			header.AddCell().SetValue(c)
		}
		for _, r := range t.Rows {
			row := sheet.AddRow()
			for _, v := range r {
				setCell(row.AddCell(), v)
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
