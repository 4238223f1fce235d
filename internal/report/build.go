package report

import (
	"fmt"

	"github.com/chazuruo/artdiff/internal/app"
)

// Build prints a build comparison.
func (p *Printer) Build(r *app.BuildReport) error {
	switch p.format {
	case FormatJSON:
		return p.json(r)
	case FormatPlain:
		p.buildPlain(r)
		return nil
	}

	for i, c := range r.Comparisons {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		title := fmt.Sprintf("%s - %s", projectTitle(r.Project), c.Title)
		switch c.Status {
		case app.StatusAbsent:
			p.println(p.muted, "%s skipped: %s", title, c.Note)
			continue
		case app.StatusFailed:
			p.println(p.bad, "%s could not be read: %s", title, c.Note)
			continue
		}
		if c.Result.Identical() {
			p.println(p.good, "%s has identical filelist", title)
			continue
		}

		p.println(p.title, "%s", title)
		tbl := p.newTable(
			fmt.Sprintf("Files only in run 1 (%s)", c.LeftLabel),
			fmt.Sprintf("Files only in run 2 (%s)", c.RightLabel),
		).WithFirstColumnFormatter(formatter(p.good))
		left, right := c.Result.OnlyInLeft, c.Result.OnlyInRight
		for j := 0; j < max(len(left), len(right)); j++ {
			tbl.AddRow(at(left, j), p.bad.Render(at(right, j)))
		}
		tbl.Print()
	}
	return nil
}

// buildPlain prints one "kind<TAB>side<TAB>path" line per difference,
// side being "-" for run 1 and "+" for run 2.
func (p *Printer) buildPlain(r *app.BuildReport) {
	for _, c := range r.Comparisons {
		if c.Status != app.StatusCompared {
			fmt.Fprintf(p.w, "%s\t%s\t%s\n", c.Kind, c.Status, c.Note)
			continue
		}
		for _, f := range c.Result.OnlyInLeft {
			fmt.Fprintf(p.w, "%s\t-\t%s\n", c.Kind, f)
		}
		for _, f := range c.Result.OnlyInRight {
			fmt.Fprintf(p.w, "%s\t+\t%s\n", c.Kind, f)
		}
	}
}

// at returns s[i], or "-" past the end.
func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return "-"
}
