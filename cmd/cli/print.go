package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"csvquery/internal/profiling"
)

// printOverview writes the selected overview sections as aligned text tables
func printOverview(out io.Writer, name string, report profiling.OverviewReport) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Data overview: %s\n", name)

	if report.Has(profiling.SectionShape) {
		fmt.Fprintf(w, "\nShape: %d rows, %d columns\n", report.RowCount, report.ColumnCount)
	}

	if report.Has(profiling.SectionColumns) {
		fmt.Fprintf(w, "\nColumns: %s\n", strings.Join(report.ColumnNames, ", "))
	}

	if report.Has(profiling.SectionPreview) {
		fmt.Fprintf(w, "\nFirst %d rows\n", len(report.Preview))
		fmt.Fprintf(w, "\t%s\n", strings.Join(report.ColumnNames, "\t"))
		for i, row := range report.Preview {
			fmt.Fprintf(w, "%d\t%s\n", i, strings.Join(row, "\t"))
		}
	}

	if report.Has(profiling.SectionStatistics) {
		fmt.Fprintf(w, "\nBasic statistics\n")
		fmt.Fprintf(w, "column\tcount\tmean\tstd\tmin\t25%%\t50%%\t75%%\tmax\n")
		for _, s := range report.Stats {
			if n := s.Numeric; n != nil {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.Column, n.Count,
					num(n.Mean), num(n.StdDev), num(n.Min), num(n.Q25), num(n.Median), num(n.Q75), num(n.Max))
			}
		}
		fmt.Fprintf(w, "\ncolumn\tcount\tunique\ttop\tfreq\n")
		for _, s := range report.Stats {
			if c := s.Categorical; c != nil {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\n", s.Column, c.Count, c.Unique, c.Top, c.Freq)
			}
		}
	}

	if report.Has(profiling.SectionMissing) {
		fmt.Fprintf(w, "\nMissing values\n")
		missing := report.MissingView()
		if len(missing) == 0 {
			fmt.Fprintf(w, "none\n")
		}
		for _, m := range missing {
			fmt.Fprintf(w, "%s\t%d\n", m.Column, m.Missing)
		}
	}

	if report.Has(profiling.SectionTypes) {
		fmt.Fprintf(w, "\nData types\n")
		for _, t := range report.Types {
			fmt.Fprintf(w, "%s\t%s\n", t.Column, t.Type)
		}
	}

	return w.Flush()
}

func num(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}
