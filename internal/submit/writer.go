// Package submit generates batch-scheduler submission artifacts from a
// resource request and a cluster configuration, then invokes the cluster's
// submit command.
package submit

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/javierggt/pyglidein/internal/config"
	"github.com/javierggt/pyglidein/internal/utils"
)

// Submitter is a scheduler-specific submission strategy. Generate writes the
// artifacts for a request and returns the file to hand to the submit command;
// Submit regenerates the artifacts and runs that command.
type Submitter interface {
	Generate(state State) (string, error)
	Submit(state State) error
}

// New returns the Submitter for the configured scheduler.
func New(cfg *config.ClusterConfig) (Submitter, error) {
	switch strings.ToLower(cfg.Cluster.Scheduler) {
	case config.SchedulerCondor:
		return NewCondorSubmit(cfg), nil
	case config.SchedulerPBS:
		return NewPBSSubmit(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheduler, cfg.Cluster.Scheduler)
	}
}

// lineWriter emits script text one line at a time, guaranteeing a single
// trailing newline per line. Errors are sticky: after the first failure all
// writes are no-ops and flush reports the error.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

// line writes one formatted line plus a newline.
func (lw *lineWriter) line(format string, a ...interface{}) {
	if lw.err != nil {
		return
	}
	if len(a) == 0 {
		_, lw.err = lw.w.WriteString(format + "\n")
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format+"\n", a...)
}

// blank writes an empty line.
func (lw *lineWriter) blank() {
	lw.line("")
}

// block writes a multi-line config text block verbatim, normalized to end in
// exactly one newline, followed by a blank line.
func (lw *lineWriter) block(text string) {
	lw.line("%s", strings.TrimRight(text, "\n"))
	lw.blank()
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}

// sortedEnvKeys returns the CustomEnv keys in a stable order so that repeated
// generation produces byte-identical artifacts.
func sortedEnvKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runSubmitCommand invokes the configured scheduler client with the generated
// filename appended to its argument vector. No shell is involved, so paths
// and arguments from the config are never shell-interpreted.
func runSubmitCommand(scheduler, command, filename string) error {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return NewSubmissionError(scheduler, filename, "",
			fmt.Errorf("empty submit command"))
	}
	argv = append(argv, filename)

	utils.PrintMessage("%s", utils.StyleCommand(strings.Join(argv, " ")))

	cmd := exec.Command(argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return NewSubmissionError(scheduler, filename, string(output), err)
	}
	return nil
}
