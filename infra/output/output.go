// Package output renders row sets for humans and scripts.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/CrestNiraj12/mastosql/app"
)

// Supported formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatPlain = "plain"
)

// MaxCellWidth bounds a rendered table cell.
const MaxCellWidth = 60

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6600")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#45475A"))
)

// DefaultFormat picks table output when w is a terminal and json otherwise.
func DefaultFormat(w io.Writer) string {
	f, ok := w.(*os.File)
	if ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatTable
	}
	return FormatJSON
}

// Print writes t to w in format. An empty format selects DefaultFormat.
func Print(w io.Writer, t app.Table, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = DefaultFormat(w)
	}

	switch format {
	case FormatTable:
		return printTable(w, t)
	case FormatJSON:
		return printJSON(w, t)
	case FormatYAML:
		return printYAML(w, t)
	case FormatPlain:
		return printPlain(w, t)
	default:
		return fmt.Errorf("invalid --format value %q", format)
	}
}

func printTable(w io.Writer, t app.Table) error {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.Columns...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range t.Rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = ansi.Truncate(CellText(v), MaxCellWidth, "…")
		}
		tbl.Row(cells...)
	}
	_, err := fmt.Fprintln(w, tbl.String())
	return err
}

func printPlain(w io.Writer, t app.Table) error {
	for _, r := range t.Rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = CellText(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, t app.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records(t))
}

func printYAML(w io.Writer, t app.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records(t)); err != nil {
		return err
	}
	return enc.Close()
}

// record is one row keyed by column name, marshalled in column order.
type record struct {
	columns []string
	values  []any
}

func records(t app.Table) []record {
	out := make([]record, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, record{columns: t.Columns, values: r})
	}
	return out
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.value(i))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, col := range r.columns {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: col}
		val := &yaml.Node{}
		if err := val.Encode(r.value(i)); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func (r record) value(i int) any {
	if i < len(r.values) {
		return r.values[i]
	}
	return nil
}

// CellText renders a value on a single line. Status HTML is reduced to its
// text with paragraphs and line breaks collapsed into spaces.
func CellText(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	default:
		return fmt.Sprint(t)
	}
	if strings.ContainsAny(s, "<&") {
		s = htmlText(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func htmlText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p").AppendHtml(" ")
	return doc.Text()
}
