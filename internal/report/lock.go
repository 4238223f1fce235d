package report

import (
	"fmt"

	"github.com/chazuruo/artdiff/internal/app"
)

// NoDifferences is printed when no lock cell differs.
const NoDifferences = "No differences found between the runs"

// Lock prints a lock comparison, one table per differing cell.
func (p *Printer) Lock(r *app.LockReport) error {
	switch p.format {
	case FormatJSON:
		return p.json(r)
	case FormatPlain:
		for _, cell := range r.Cells {
			for _, row := range cell.Rows {
				fmt.Fprintf(p.w, "%s\t%s\t%s\t%s\t%s\n",
					cell.Environment, cell.Platform, row.Package, orDash(row.Left), orDash(row.Right))
			}
		}
		return nil
	}

	if len(r.Cells) == 0 {
		p.println(p.good, NoDifferences)
		return nil
	}
	for i, cell := range r.Cells {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.println(p.title, "Difference in packages on %q for env %q on arch %q",
			r.Project, cell.Environment, cell.Platform)
		tbl := p.newTable("Package",
			fmt.Sprintf("Good run (#%d)", r.Left.Run),
			fmt.Sprintf("Bad run (#%d)", r.Right.Run))
		for _, row := range cell.Rows {
			tbl.AddRow(row.Package, p.good.Render(orDash(row.Left)), p.bad.Render(orDash(row.Right)))
		}
		tbl.Print()
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
