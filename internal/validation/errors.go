package validation

import "errors"

// ExitCodeValidation is the process exit status for a failed finalization.
const ExitCodeValidation = 255

var (
	ErrCMakeNotFound   = errors.New("cmake could not be found")
	ErrToolMissing     = errors.New("tool path does not exist")
	ErrQtPathsRequired = errors.New("no value provided to --qtpaths option")
	ErrInvalidMakeSpec = errors.New("invalid option --make-spec")
	ErrJobsRequireJom  = errors.New("option --jobs can only be used with jom on Windows")
)

// Step names the finalization check that failed.
type Step string

const (
	StepCMake     Step = "cmake"
	StepDiscovery Step = "discovery-tool"
	StepToolPath  Step = "tool-path"
	StepMakeSpec  Step = "make-spec"
	StepJobs      Step = "jobs"
)

// Error is a finalization failure. Message is the text shown to the user.
type Error struct {
	Step    Step
	Code    int
	Message string
	Err     error
}

func newError(step Step, err error, message string) *Error {
	return &Error{Step: step, Code: ExitCodeValidation, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
