// Package xerrors is the structured error type shared across the core.
package xerrors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred.
type Phase string

const (
	PhaseContainer     Phase = "container"      // FOR1/BEAM header and chunk framing
	PhaseChunk         Phase = "chunk"          // a named chunk's body
	PhaseCompactTerm   Phase = "compact_term"   // the code-section compact term encoding
	PhaseExternalTerm  Phase = "external_term"  // the literal chunk's external term encoding
	PhaseDecode        Phase = "decode"         // instruction decoding
	PhaseAnalyze       Phase = "analyze"        // itemization, CFG, annotation
)

// Kind categorizes the error.
type Kind string

const (
	KindInvalidHeader     Kind = "invalid_header"
	KindUnsupportedTag    Kind = "unsupported_tag"
	KindUnknownOpcode     Kind = "unknown_opcode"
	KindIndexOutOfRange   Kind = "index_out_of_range"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindTruncated         Kind = "truncated"
	KindSizeLimit         Kind = "size_limit"
)

// Error is the structured error type used throughout the core.
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Detail  string
	Offset  int
	HasOffset bool
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))
	if e.HasOffset {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's phase and kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// New constructs a bare structured error.
func New(phase Phase, kind Kind, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail}
}

// Newf constructs a structured error with a formatted detail message.
func Newf(phase Phase, kind Kind, format string, args ...any) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// AtOffset attaches a byte offset to the error for positional reporting.
func (e *Error) AtOffset(offset int) *Error {
	e.Offset = offset
	e.HasOffset = true
	return e
}

// Wrap wraps an existing error with phase/kind context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}

// InvalidHeader reports a container header mismatch.
func InvalidHeader(detail string) *Error {
	return New(PhaseContainer, KindInvalidHeader, detail)
}

// UnknownOpcode reports a code-chunk opcode absent from the registry.
func UnknownOpcode(opcode byte) *Error {
	return Newf(PhaseDecode, KindUnknownOpcode, "opcode 0x%02x not in registry", opcode)
}

// UnsupportedCompactTerm reports an extended compact-term tag or payload
// the reader cannot decode.
func UnsupportedCompactTerm(tag byte) *Error {
	return Newf(PhaseCompactTerm, KindUnsupportedTag, "unsupported extended tag 0x%02x", tag)
}

// UnsupportedExtTag reports an external-term tag byte the reader does not
// recognize.
func UnsupportedExtTag(tag byte) *Error {
	return Newf(PhaseExternalTerm, KindUnsupportedTag, "unsupported external term tag %d", tag)
}

// IndexOutOfRange reports a table lookup that fell outside its bounds.
func IndexOutOfRange(phase Phase, what string, index, length int) *Error {
	return Newf(phase, KindIndexOutOfRange, "%s index %d out of range (length %d)", what, index, length)
}

// SizeLimit reports a declared size exceeding a configured safety cap.
func SizeLimit(what string, declared, limit int) *Error {
	return Newf(PhaseChunk, KindSizeLimit, "%s declared size %d exceeds cap %d", what, declared, limit)
}
