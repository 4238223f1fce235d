package report

import (
	"fmt"
	"time"

	"github.com/chazuruo/artdiff/internal/cache"
	"github.com/chazuruo/artdiff/internal/ci"
)

// Runs prints one page of workflow runs.
func (p *Printer) Runs(runs []ci.RunSummary) error {
	switch p.format {
	case FormatJSON:
		if runs == nil {
			runs = []ci.RunSummary{}
		}
		return p.json(runs)
	case FormatPlain:
		for _, r := range runs {
			fmt.Fprintln(p.w, r.Display())
		}
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(p.w, "No runs found.")
		return nil
	}
	tbl := p.newTable("RUN", "CONCLUSION", "CREATED", "BRANCH")
	for _, r := range runs {
		conclusion := r.Conclusion
		style := p.good
		switch {
		case r.Status != "completed":
			conclusion, style = r.Status, p.muted
		case conclusion != "success":
			style = p.bad
		}
		tbl.AddRow(r.Number, style.Render(conclusion), r.CreatedAt.Format("2006-01-02 15:04"), r.Branch)
	}
	tbl.Print()
	return nil
}

// CacheEntries prints the committed cache entries.
func (p *Printer) CacheEntries(entries []cache.Info) error {
	switch p.format {
	case FormatJSON:
		if entries == nil {
			entries = []cache.Info{}
		}
		return p.json(entries)
	case FormatPlain:
		for _, e := range entries {
			fmt.Fprintln(p.w, e.Path)
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(p.w, "Cache is empty.")
		return nil
	}
	tbl := p.newTable("ENTRY", "FILES", "SIZE", "FETCHED")
	for _, e := range entries {
		tbl.AddRow(e.Name, e.Files, humanBytes(e.Bytes), formatTimeAgo(e.Modified))
	}
	tbl.Print()
	return nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
