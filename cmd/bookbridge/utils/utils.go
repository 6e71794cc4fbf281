package utils

import (
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NewTable returns a table that renders to stdout.
func NewTable() table.Writer {
	return NewTableTo(os.Stdout)
}

func NewTableTo(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// Ellipsize shortens `s` to at most `n` runes.
func Ellipsize(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 1 {
		return string(runes[:n])
	}
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}
