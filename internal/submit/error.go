package submit

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrMissingExecutable indicates the configured glidein executable does
	// not exist on disk.
	ErrMissingExecutable = errors.New("glidein executable not found")

	// ErrMissingTarball indicates the configured glidein tarball does not
	// exist on disk.
	ErrMissingTarball = errors.New("glidein tarball not found")

	// ErrUnknownScheduler indicates the configured scheduler identifier has
	// no submit back end.
	ErrUnknownScheduler = errors.New("unknown scheduler")
)

// SubmissionError represents a failed scheduler submit command.
type SubmissionError struct {
	Scheduler string // Scheduler name ("HTCondor", "PBS")
	Filename  string // Generated file passed to the submit command
	Output    string // Combined output of the submit command
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed to launch glidein from %s: %v\nOutput: %s",
			e.Scheduler, e.Filename, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed to launch glidein from %s: %v",
		e.Scheduler, e.Filename, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler, filename, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		Filename:  filename,
		Output:    output,
		Err:       err,
	}
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
