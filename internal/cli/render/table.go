package render

import (
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	headerStyle        = color.New(color.Bold, color.FgHiWhite)
	addressStyle       = color.New(color.FgWhite)
	faintStyle         = color.New(color.Faint)
	globalStyle        = color.New(color.FgCyan)
	marketStyle        = color.New(color.FgYellow)
	okStyle            = color.New(color.FgGreen)
	skipStyle          = color.New(color.FgYellow)
	errStyle           = color.New(color.FgRed)
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
)

var titleCaser = cases.Title(language.English)

// newTable returns a borderless light table writing to out
func newTable(out io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box = table.BoxStyle{
		PaddingRight:     "   ",
		MiddleHorizontal: "─",
	}
	t.Style().Format.Header = text.FormatUpper
	if len(header) > 0 {
		t.AppendHeader(table.Row(header))
	}
	return t
}
