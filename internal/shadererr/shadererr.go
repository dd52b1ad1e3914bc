// Package shadererr defines the failure taxonomy of a shader build. Every
// error that aborts an asset pipeline is an *Error carrying the Kind, the
// asset it happened to, and the stage that was running.
package shadererr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a build failure.
type Kind int

const (
	// ToolNotFound means the SDK root is unset or a tool binary is missing.
	ToolNotFound Kind = iota + 1
	// ToolExecutionFailed means an external tool exited non-zero or crashed.
	ToolExecutionFailed
	// SourceReadError means a shader source file could not be read.
	SourceReadError
	// NamingCollision means two symbols in one header resolved to the same identifier.
	NamingCollision
	// EncodingError means an artifact could not be read as the expected payload.
	EncodingError
)

func (k Kind) String() string {
	switch k {
	case ToolNotFound:
		return "tool not found"
	case ToolExecutionFailed:
		return "tool execution failed"
	case SourceReadError:
		return "source read error"
	case NamingCollision:
		return "naming collision"
	case EncodingError:
		return "encoding error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrToolNotFound        = &Error{Kind: ToolNotFound}
	ErrToolExecutionFailed = &Error{Kind: ToolExecutionFailed}
	ErrSourceRead          = &Error{Kind: SourceReadError}
	ErrNamingCollision     = &Error{Kind: NamingCollision}
	ErrEncoding            = &Error{Kind: EncodingError}
)

// Error is a classified build failure.
type Error struct {
	Kind  Kind
	Asset string // source path of the shader, empty for build-wide failures
	Stage string // compile, optimize, remap, disassemble, read, encode, name, write

	// ExitCode is the tool's exit status for ToolExecutionFailed, -1 when the
	// process was killed by a signal.
	ExitCode int
	// Output is the combined stdout/stderr the tool produced.
	Output string

	Err error
}

// New builds an *Error.
func New(kind Kind, asset, stage string, err error) *Error {
	return &Error{Kind: kind, Asset: asset, Stage: stage, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Asset != "" {
		fmt.Fprintf(&b, ": asset %s", e.Asset)
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, ": stage %s", e.Stage)
	}
	if e.Kind == ToolExecutionFailed {
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel (or any *Error) of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
