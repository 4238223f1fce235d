// Package cache stores extracted run artifacts on disk, one directory per
// (project, workflow, run).
//
// An entry directory exists only once it is fully populated: entries are
// filled in a staging directory and renamed into place.
package cache

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Key identifies one run's artifacts.
type Key struct {
	Project  string
	Workflow string
	Run      int
}

// WorkflowStem returns the workflow filename before its first dot,
// e.g. "build" for "build.yaml".
func (k Key) WorkflowStem() string {
	stem, _, _ := strings.Cut(k.Workflow, ".")
	return stem
}

// Dir returns the entry directory name: "<project>_<workflow stem>_<run>".
// A "/" in the project becomes "_".
func (k Key) Dir() string {
	project := strings.ReplaceAll(k.Project, "/", "_")
	return fmt.Sprintf("%s_%s_%d", project, k.WorkflowStem(), k.Run)
}

// Digest returns a short stable hash of the key. Staging directories of
// the key are named after it, so stale ones can be found per key.
func (k Key) Digest() string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d", k.Project, k.Workflow, k.Run)))
	return hex.EncodeToString(sum[:8])
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s#%d", k.Project, k.Workflow, k.Run)
}
