package ci

import (
	"fmt"
	"time"
)

// RunSummary is one workflow run as returned by the run listing.
type RunSummary struct {
	Number     int       `json:"run_number"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"created_at"`
	Branch     string    `json:"head_branch"`
	URL        string    `json:"url"`
}

// Eligible reports whether the run finished and its artifacts are readable.
func (r RunSummary) Eligible() bool {
	return r.Status == "completed" && r.Conclusion != "action_required"
}

// ArtifactsURL returns the artifact listing location of the run.
func (r RunSummary) ArtifactsURL() string {
	return r.URL + "/artifacts"
}

// Display renders the run as one picker line.
func (r RunSummary) Display() string {
	conclusion := r.Conclusion
	if conclusion == "" {
		conclusion = "running"
	}
	return fmt.Sprintf("%-5d %-13s %s    branch: %s",
		r.Number, conclusion, r.CreatedAt.Format("2006-01-02 15:04"), r.Branch)
}

// ArtifactDescriptor is one artifact attached to a run.
type ArtifactDescriptor struct {
	Name        string `json:"name"`
	DownloadURL string `json:"archive_download_url"`
	SizeInBytes int64  `json:"size_in_bytes"`
	Expired     bool   `json:"expired"`
}

// SelectArtifacts keeps the artifacts whose name is in names. Without
// names it keeps only the first artifact.
func SelectArtifacts(artifacts []ArtifactDescriptor, names []string) []ArtifactDescriptor {
	if len(names) == 0 {
		if len(artifacts) == 0 {
			return nil
		}
		return artifacts[:1]
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []ArtifactDescriptor
	for _, a := range artifacts {
		if wanted[a.Name] {
			out = append(out, a)
		}
	}
	return out
}
