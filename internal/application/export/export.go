// Package export renders screening results as CSV, JSON or terminal tables.
// The row layout is formula, one label per site, then tolerance_factor and
// sustainability_score when the matching evaluator ran.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatTable, FormatMarkdown:
		return f, nil
	default:
		return "", errors.InvalidParam("unsupported export format").WithDetail(s)
	}
}

// Column names.
const (
	ColumnFormula        = "formula"
	ColumnTolerance      = "tolerance_factor"
	ColumnSustainability = "sustainability_score"
)

// Columns selects the optional columns.
type Columns struct {
	Tolerance      bool
	Sustainability bool
}

// ColumnsFor returns the columns matching the evaluators that ran for res.
func ColumnsFor(res *screening.Result) Columns {
	return Columns{Tolerance: res.Tolerance, Sustainability: res.Score}
}

// Header returns the column names for sites.
func Header(sites []string, cols Columns) []string {
	h := make([]string, 0, len(sites)+3)
	h = append(h, ColumnFormula)
	h = append(h, sites...)
	if cols.Tolerance {
		h = append(h, ColumnTolerance)
	}
	if cols.Sustainability {
		h = append(h, ColumnSustainability)
	}
	return h
}

// Row renders one candidate.  Undefined tolerance factors and missing scores
// are empty cells.
func Row(c screening.Candidate, cols Columns) []string {
	r := make([]string, 0, len(c.SiteLabels)+3)
	r = append(r, c.Formula)
	r = append(r, c.SiteLabels...)
	if cols.Tolerance {
		v := ""
		if c.Tolerance != nil && c.Tolerance.Defined() {
			v = strconv.FormatFloat(c.Tolerance.Value, 'f', 4, 64)
		}
		r = append(r, v)
	}
	if cols.Sustainability {
		v := ""
		if c.Sustainability != nil {
			v = strconv.FormatFloat(*c.Sustainability, 'f', 1, 64)
		}
		r = append(r, v)
	}
	return r
}

// Rows renders every candidate of res, header first.
func Rows(res *screening.Result) [][]string {
	cols := ColumnsFor(res)
	out := make([][]string, 0, len(res.Candidates)+1)
	out = append(out, Header(res.Sites, cols))
	for _, c := range res.Candidates {
		out = append(out, Row(c, cols))
	}
	return out
}

// WriteCSV writes res as comma-separated values.
func WriteCSV(w io.Writer, res *screening.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(res)); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "write CSV")
	}
	return nil
}

// CSV returns res as CSV bytes.
func CSV(res *screening.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Table renders res as an ASCII table, or Markdown when markdown is set, with
// the stage counts in the footer caption.
func Table(res *screening.Result, markdown bool) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)

	rows := Rows(res)
	header := make(table.Row, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = h
	}
	w.AppendHeader(header)
	for _, r := range rows[1:] {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		w.AppendRow(row)
	}

	cols := ColumnsFor(res)
	first := len(res.Sites) + 2
	var cfgs []table.ColumnConfig
	if cols.Tolerance {
		cfgs = append(cfgs, table.ColumnConfig{Number: first, Align: text.AlignRight})
		first++
	}
	if cols.Sustainability {
		cfgs = append(cfgs, table.ColumnConfig{Number: first, Align: text.AlignRight})
	}
	w.SetColumnConfigs(cfgs)
	w.SetCaption(CountsLine(res.Counts))

	if markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// CountsLine summarises stage counts on one line.
func CountsLine(c screening.Counts) string {
	return fmt.Sprintf("generated=%d charge_neutral=%d electronegativity_passed=%d unique=%d stable=%d",
		c.Generated, c.ChargeNeutral, c.ElectronegativityPassed, c.Unique, c.Stable)
}

// Write encodes res to w in format f.
func Write(w io.Writer, res *screening.Result, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "encode JSON")
		}
		return nil
	case FormatTable, FormatMarkdown:
		if _, err := io.WriteString(w, Table(res, f == FormatMarkdown)+"\n"); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "write table")
		}
		return nil
	default:
		return errors.InvalidParam("unsupported export format").WithDetail(string(f))
	}
}

// ContentType returns the MIME type of f.
func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

//Personal.AI order the ending
