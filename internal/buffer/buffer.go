// Package buffer implements the Buffer & Region Protocol (§2, §4.4 intro,
// §6.2): a mutable output buffer supporting nested, named regions
// delimited by machine-readable start/end markers. External tooling uses
// these markers to merge subsequent generations with user edits; the core
// itself never reads a marker back, it only ever emits them in LIFO-
// balanced pairs (§8 invariant 5).
package buffer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uberFoo/grace-sub001/internal/graceerr"
)

// Directive is the merge-behavior contract a region carries.
type Directive string

const (
	// IgnoreOriginal: replace content on every generation; prior content
	// is discarded.
	IgnoreOriginal Directive = "ignore-orig"
	// CommentOriginal: replace content, but keep prior content as
	// comments for diffing.
	CommentOriginal Directive = "comment-orig"
	// AllowEditing: re-emit only if missing; existing content is
	// preserved verbatim.
	AllowEditing Directive = "allow-editing"
	// IgnoreGenerated: one-time emission intended to be hand-edited
	// thereafter.
	IgnoreGenerated Directive = "ignore-generated"
)

type startEnvelope struct {
	Magic     string `json:"magic"`
	Directive struct {
		Start struct {
			Directive string `json:"directive"`
			Tag       string `json:"tag"`
		} `json:"Start"`
	} `json:"directive"`
}

type endEnvelope struct {
	Magic     string `json:"magic"`
	Directive struct {
		End struct {
			Directive string `json:"directive"`
		} `json:"End"`
	} `json:"directive"`
}

func startLine(d Directive, tag string) string {
	var e startEnvelope
	e.Directive.Start.Directive = string(d)
	e.Directive.Start.Tag = tag
	b, _ := json.Marshal(e)
	return string(b)
}

func endLine(d Directive) string {
	var e endEnvelope
	e.Directive.End.Directive = string(d)
	b, _ := json.Marshal(e)
	return string(b)
}

// Buffer accumulates emitted source text, tracking the LIFO stack of open
// regions so Close (and Block) can enforce region balance.
type Buffer struct {
	lines []string
	stack []openRegion
}

type openRegion struct {
	directive Directive
	tag       string
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Emit appends one line of source text, formatted like fmt.Sprintf.
func (b *Buffer) Emit(format string, args ...interface{}) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

// EmitRaw appends line verbatim, with no formatting substitution.
func (b *Buffer) EmitRaw(line string) {
	b.lines = append(b.lines, line)
}

// Open starts a named region with the given directive. tag must be unique
// within the file the Buffer backs (§9 DESIGN NOTES); Open does not
// enforce uniqueness itself — callers compose tags from the object
// identifier and a purpose suffix, which is unique by construction.
func (b *Buffer) Open(directive Directive, tag string) {
	b.lines = append(b.lines, startLine(directive, tag))
	b.stack = append(b.stack, openRegion{directive: directive, tag: tag})
}

// Close ends the most recently opened region. It returns a FormatError if
// the buffer has no open region, which would violate region balance.
func (b *Buffer) Close() error {
	if len(b.stack) == 0 {
		return &graceerr.FormatError{Region: "<none>", Cause: fmt.Errorf("unbalanced region close")}
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.lines = append(b.lines, endLine(top.directive))
	return nil
}

// Block opens a region, runs fn with the buffer, and closes the region —
// the idiomatic way writers should bracket emitted content, since it can
// never forget to balance the region or leak one on an early return.
func (b *Buffer) Block(directive Directive, tag string, fn func(*Buffer)) error {
	b.Open(directive, tag)
	fn(b)
	return b.Close()
}

// Balanced reports whether every opened region has been closed — used by
// tests asserting §8 invariant 5.
func (b *Buffer) Balanced() bool {
	return len(b.stack) == 0
}

// String renders the accumulated buffer as a single text blob.
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n") + "\n"
}

// Lines returns a copy of the accumulated lines, one emitted line/marker
// per element.
func (b *Buffer) Lines() []string {
	return append([]string(nil), b.lines...)
}
