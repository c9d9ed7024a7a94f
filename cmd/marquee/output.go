package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// painter colors headings and status words when stdout is a terminal.
type painter struct {
	enabled bool
}

func newPainter(cmd *cobra.Command) painter {
	return painter{enabled: shouldColorize(cmd.OutOrStdout())}
}

func (p painter) heading(s string) string {
	if !p.enabled {
		return s
	}
	return text.Colors{text.Bold, text.FgCyan}.Sprint(s)
}

func (p painter) ok(s string) string {
	if !p.enabled {
		return s
	}
	return text.FgGreen.Sprint(s)
}

func (p painter) bad(s string) string {
	if !p.enabled {
		return s
	}
	return text.FgRed.Sprint(s)
}

func (p painter) dim(s string) string {
	if !p.enabled {
		return s
	}
	return text.Faint.Sprint(s)
}

func printField(out io.Writer, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, value)
}

func formatRating(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
