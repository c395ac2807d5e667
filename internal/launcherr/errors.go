// Package launcherr defines the coded error type shared by every stage of a
// launch: provisioning the userdir, writing the platform config, extracting
// plugins and running the application.
package launcherr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies the stage a launch failed in.
type Code string

const (
	CodeProvisioning         Code = "PROVISIONING"
	CodeConfigWrite          Code = "CONFIG_WRITE"
	CodeExtraction           Code = "EXTRACTION"
	CodeLaunch               Code = "LAUNCH"
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
)

// Error is a launch failure with a code, some context and the underlying cause.
type Error struct {
	Code    Code
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface. Context keys are sorted so messages are stable.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds a key/value pair to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// ErrTempDirFailed reports that an ephemeral userdir could not be created.
func ErrTempDirFailed(root string, cause error) *Error {
	return New(CodeProvisioning, "cannot create ephemeral userdir").
		WithContext("temp_root", root).
		WithCause(cause)
}

// ErrCloneSourceUnavailable reports a missing or unreadable clone source.
func ErrCloneSourceUnavailable(source string, cause error) *Error {
	return New(CodeProvisioning, "clone source is not a readable directory").
		WithContext("source", source).
		WithCause(cause)
}

// ErrCloneFailed reports a failure while copying the clone source.
func ErrCloneFailed(source, target string, cause error) *Error {
	return New(CodeProvisioning, "cannot clone userdir").
		WithContext("source", source).
		WithContext("target", target).
		WithCause(cause)
}

// ErrConfigWriteFailed reports a failure writing the platform config file.
func ErrConfigWriteFailed(path string, cause error) *Error {
	return New(CodeConfigWrite, "cannot write platform config").
		WithContext("path", path).
		WithCause(cause)
}

// ErrArchiveOpenFailed reports a plugin archive that cannot be opened as a zip.
func ErrArchiveOpenFailed(archive string, cause error) *Error {
	return New(CodeExtraction, "cannot open plugin archive").
		WithContext("archive", archive).
		WithCause(cause)
}

// ErrExtractionFailed reports a failure copying a plugin archive's content.
func ErrExtractionFailed(archive, target string, cause error) *Error {
	return New(CodeExtraction, "cannot extract plugin archive").
		WithContext("archive", archive).
		WithContext("target", target).
		WithCause(cause)
}

// ErrExecutableNotFound reports a missing application launcher.
func ErrExecutableNotFound(executable string, cause error) *Error {
	return New(CodeLaunch, "application executable not found").
		WithContext("executable", executable).
		WithCause(cause)
}

// ErrProcessStartFailed reports a launcher that exists but could not be started.
func ErrProcessStartFailed(executable string, cause error) *Error {
	return New(CodeLaunch, "cannot start application").
		WithContext("executable", executable).
		WithCause(cause)
}

// ErrProcessWaitFailed reports an interrupted wait on the application process.
func ErrProcessWaitFailed(executable string, cause error) *Error {
	return New(CodeLaunch, "waiting for application failed").
		WithContext("executable", executable).
		WithCause(cause)
}

// ErrInvalidConfiguration reports a configuration that cannot be launched.
func ErrInvalidConfiguration(reason string) *Error {
	return New(CodeInvalidConfiguration, reason)
}
