package rebuild

import (
	"errors"
	"fmt"
	"strings"
)

// Failure codes carried by BuildFailure.
const (
	// CodeModuleNotFound means an expected module, header tree or build
	// artifact was missing. It is the only retryable code.
	CodeModuleNotFound = "MODULE_NOT_FOUND"
	CodeBuildFailed    = "BUILD_FAILED"
	CodeToolMissing    = "TOOL_MISSING"
	CodeInvalidConfig  = "INVALID_CONFIG"
)

// BuildFailure is the error a BuildSystem returns when a rebuild cannot
// complete.
//
// # Format
//
// With an underlying error and output:
//
//	[BUILD_FAILED] CMake configure failed: exit status 1
//
//	Build output:
//	-- The CXX compiler identification is GNU 13.2.0
//	CMake Error at CMakeLists.txt:12 (find_package): ...
//
// Without output only the first line is produced.
type BuildFailure struct {
	Code   string   // One of the Code* constants
	Step   string   // Step that failed, e.g. "CMake configure"
	Output []string // Captured tool output, may be empty
	Err    error    // Underlying cause, may be nil
}

func (f *BuildFailure) Error() string {
	var prefix string
	if f.Err != nil {
		prefix = fmt.Sprintf("[%s] %s failed: %v", f.Code, f.Step, f.Err)
	} else {
		prefix = fmt.Sprintf("[%s] %s failed", f.Code, f.Step)
	}

	outputStr := strings.TrimRight(strings.Join(f.Output, "\n"), "\n")
	if outputStr != "" {
		return fmt.Sprintf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}
	return prefix
}

func (f *BuildFailure) Unwrap() error {
	return f.Err
}

// BuildError creates a BuildFailure for the given step, keeping a copy of
// the output collected so far.
func BuildError(code, step string, output []string, err error) *BuildFailure {
	return &BuildFailure{
		Code:   code,
		Step:   step,
		Output: append([]string(nil), output...),
		Err:    err,
	}
}

// Outcome is the classification of a single rebuild attempt.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeRetryable
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Classify maps a rebuild error to an Outcome. Only a BuildFailure (possibly
// wrapped) with CodeModuleNotFound is retryable.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSucceeded
	}
	if IsModuleNotFound(err) {
		return OutcomeRetryable
	}
	return OutcomeFatal
}

// IsModuleNotFound reports whether err carries CodeModuleNotFound.
func IsModuleNotFound(err error) bool {
	var f *BuildFailure
	return errors.As(err, &f) && f.Code == CodeModuleNotFound
}
