package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// column describes one table column. maxWidth > 0 wraps longer cells.
type column struct {
	header   string
	align    columnAlignment
	maxWidth int
}

var (
	recommendationColumns = []column{
		{header: "ID", align: alignRight},
		{header: "Title", maxWidth: 40},
		{header: "Rating", align: alignRight},
		{header: "Votes", align: alignRight},
		{header: "Released"},
		{header: "Language"},
	}
	candidateColumns = []column{
		{header: "ID", align: alignRight},
		{header: "Title", maxWidth: 48},
		{header: "IMDb"},
		{header: "Released"},
	}
	segmentColumns = []column{
		{header: "Segment"},
		{header: "Score", align: alignRight},
		{header: "Description", maxWidth: 60},
	}
	cacheColumns = []column{
		{header: "Key"},
		{header: "Title", maxWidth: 40},
		{header: "Usable"},
		{header: "Analyzed"},
		{header: "Reviews", align: alignRight},
	}
	languageColumns = []column{
		{header: "Code"},
		{header: "Name"},
	}
)

// countColumns is a label column followed by a right-aligned movie count.
func countColumns(label string) []column {
	return []column{{header: label}, {header: "Movies", align: alignRight}}
}

// renderTable draws rows in the rounded style. A non-empty caption is printed
// under the table.
func renderTable(columns []column, rows [][]string, caption string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header[i] = col.header
		align := text.AlignLeft
		if col.align == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    col.maxWidth,
		})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	if caption != "" {
		tw.SetCaption(caption)
	}
	return tw.Render()
}
