// Package report renders sweep results and stored runs for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/nucyield/internal/attenuation"
	"github.com/san-kum/nucyield/internal/storage"
	"github.com/san-kum/nucyield/internal/sweep"
)

// Field is one labelled value in a summary block.
type Field struct {
	Label string
	Value string
}

func F(label, format string, args ...any) Field {
	return Field{Label: label, Value: fmt.Sprintf(format, args...)}
}

// Summary prints a title followed by aligned label/value lines.
func Summary(w io.Writer, title string, fields []Field) error {
	if _, err := fmt.Fprintln(w, HeaderStyle.Render(title)); err != nil {
		return err
	}
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	for _, f := range fields {
		pad := strings.Repeat(" ", width-len(f.Label))
		if _, err := fmt.Fprintf(w, "  %s%s  %s\n", LabelStyle.Render(f.Label+":"), pad, ValueStyle.Render(f.Value)); err != nil {
			return err
		}
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func Yields(w io.Writer, pts []sweep.YieldPoint) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "E_KEV\tYIELD\tABS_ERR\tSUBDIV")
	for _, p := range pts {
		fmt.Fprintf(tw, "%.3f\t%.6e\t%.2e\t%d\n", p.Energy, p.Yield, p.AbsErr, p.Subdivisions)
	}
	return tw.Flush()
}

func Efficiencies(w io.Writer, pts []sweep.EfficiencyPoint) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "E_MEV\tMU_PER_CM\tEFFICIENCY\tPERCENT")
	for _, p := range pts {
		fmt.Fprintf(tw, "%.4f\t%.4g\t%.6f\t%.3f%%\n", p.Energy, p.Mu, p.Efficiency, 100*p.Efficiency)
	}
	return tw.Flush()
}

func Coefficients(w io.Writer, rows []attenuation.Coefficient) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "E_MEV\tTAU_CM2_G\tMU_PER_CM")
	for _, c := range rows {
		fmt.Fprintf(tw, "%.4e\t%.4e\t%.4e\n", c.Energy, c.Tau, c.Mu)
	}
	return tw.Flush()
}

func Runs(w io.Writer, runs []storage.RunMetadata) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no runs found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tKIND\tTIME\tPOINTS\tCOLUMNS")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Points,
			strings.Join(run.Columns, ","),
		)
	}
	return tw.Flush()
}

// Points prints a stored run's rows under its column names.
func Points(w io.Writer, columns []string, rows [][]float64) error {
	tw := newTable(w)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%.6g", v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
