// Package archerr provides structured error handling for the archlint CLI.
//
// Errors carry a Kind that maps to a process exit code so the commands can
// report failures consistently: 0 clean, 1 regression/policy gate, 2 invalid
// input, 3 internal error.
package archerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for exit-code mapping and reporting.
type Kind int

const (
	// KindIo covers missing files, permission errors, cache read/write.
	KindIo Kind = iota
	// KindParse covers malformed source files. Recovered per-file.
	KindParse
	// KindConfig covers malformed YAML, invalid rule types, unknown presets.
	KindConfig
	// KindResolution covers unreachable alias targets. Warned, not fatal.
	KindResolution
	// KindSnapshot covers unsupported schema versions and duplicate IDs.
	KindSnapshot
	// KindGit covers missing repositories and worktree failures.
	KindGit
	// KindInternal covers invariant violations.
	KindInternal
)

// Exit codes for the CLI.
const (
	ExitOK       = 0
	ExitGate     = 1
	ExitInvalid  = 2
	ExitInternal = 3
)

func (k Kind) String() string {
	switch k {
	case KindIo:
		return "io"
	case KindParse:
		return "parse"
	case KindConfig:
		return "config"
	case KindResolution:
		return "resolution"
	case KindSnapshot:
		return "snapshot"
	case KindGit:
		return "git"
	default:
		return "internal"
	}
}

// ExitCode returns the process exit code for this error kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindConfig, KindSnapshot, KindIo, KindGit:
		return ExitInvalid
	default:
		return ExitInternal
	}
}

// Error is a kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind and message. Returns nil if err is nil.
func Wrap(kind Kind, msg string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// ExitCodeFor returns the exit code appropriate for err.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	return KindOf(err).ExitCode()
}
