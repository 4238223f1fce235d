package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// repro builds the command line that reproduces a comparison with its
// resolved run numbers.
type repro struct {
	args []string
}

func newRepro(command, project string, runs ...int) *repro {
	r := &repro{args: []string{"artdiff", command, project}}
	for _, n := range runs {
		r.args = append(r.args, strconv.Itoa(n))
	}
	return r
}

// flag adds --name value unless value equals def.
func (r *repro) flag(name, value, def string) *repro {
	if value != "" && value != def {
		r.args = append(r.args, "--"+name, value)
	}
	return r
}

// flags adds --name value for each value.
func (r *repro) flags(name string, values []string) *repro {
	for _, v := range values {
		r.args = append(r.args, "--"+name, v)
	}
	return r
}

// toggle adds --name when set.
func (r *repro) toggle(name string, set bool) *repro {
	if set {
		r.args = append(r.args, "--"+name)
	}
	return r
}

func (r *repro) String() string {
	return strings.Join(r.args, " ")
}

// emit prints the repro command to stderr and copies it when asked to.
func (r *repro) emit(cmd *cobra.Command, copyToClipboard bool) {
	line := r.String()
	fmt.Fprintf(cmd.ErrOrStderr(), "Repro: %s\n", line)
	if !copyToClipboard {
		return
	}
	if err := clipboard.WriteAll(line); err != nil {
		logger.Warn("could not copy to clipboard", zap.Error(err))
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
}
