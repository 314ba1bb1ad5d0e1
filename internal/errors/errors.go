// Package errors defines the error kinds of a housekeeping run and how they
// surface to the user and to the invoking process.
package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	AttributeRead Kind = "attribute_read"
	Deletion      Kind = "deletion"
	Copy          Kind = "copy"
	ReportCommit  Kind = "report_commit"
	Configuration Kind = "configuration"
	IOFailure     Kind = "io_failure"
	Internal      Kind = "internal"
)

// Error carries the kind of failure, the operation and the path it concerns.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns nil when err is nil.
func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Configf builds a configuration error from a message.
func Configf(field, format string, args ...any) error {
	return &Error{
		Kind: Configuration,
		Op:   field,
		Err:  fmt.Errorf(format, args...),
	}
}

// KindOf returns the kind of the outermost *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Fatal reports whether err must abort the whole run rather than a single file.
func Fatal(err error) bool {
	switch KindOf(err) {
	case AttributeRead, Deletion, Copy:
		return false
	default:
		return err != nil
	}
}

func UserMessage(err error) string {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case Configuration:
		return fmt.Sprintf("Invalid configuration: %s: %v", appErr.Op, appErr.Err)
	case ReportCommit:
		return fmt.Sprintf("Could not commit report %s: %v", appErr.Path, appErr.Err)
	case IOFailure:
		return fmt.Sprintf("I/O error on %s: %v", appErr.Path, appErr.Err)
	case AttributeRead, Deletion, Copy:
		return appErr.Error()
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}

// ExitCode maps an error to the process exit status: 2 for rejected
// configuration, 1 for every other failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case Is(err, Configuration):
		return 2
	default:
		return 1
	}
}
