// Package ioutil provides the buffered line-oriented writer the backend
// and printers assemble their output with.
//
// Adapted from the teacher's util/io.go Writer: same strings.Builder
// buffer and Write/Label/Ins1/Ins2/Ins3 convenience methods, but with the
// worker-thread channel handoff (ListenWrite/Close) that existed to fan
// output back in from concurrent codegen goroutines dropped — spec §5
// rules out concurrency anywhere in this pipeline, so there is exactly
// one writer, which buffers its text until read back with String or
// written out with Flush.
package ioutil

import (
	"fmt"
	"io"
	"strings"
)

// Writer buffers generated text in a strings.Builder until flushed to
// its destination io.Writer.
type Writer struct {
	sb strings.Builder
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write appends a formatted line-fragment to the buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// Ins1 writes a one-operand instruction line.
func (w *Writer) Ins1(op, rs1 string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s\n", op, rs1)
}

// Ins2 writes a two-operand instruction line, operands in the given
// order (x86 AT&T syntax: source first, destination second).
func (w *Writer) Ins2(op, a, b string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s\n", op, a, b)
}

// Ins3 writes a three-operand instruction line, operands in the given
// order.
func (w *Writer) Ins3(op, a, b, c string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s, %s\n", op, a, b, c)
}

// Label writes a bare label line.
func (w *Writer) Label(name string) {
	fmt.Fprintf(&w.sb, "%s:\n", name)
}

// String returns the buffered text accumulated so far.
func (w *Writer) String() string {
	return w.sb.String()
}

// Flush writes the buffered text to dst and resets the buffer.
func (w *Writer) Flush(dst io.Writer) error {
	_, err := io.WriteString(dst, w.sb.String())
	w.sb.Reset()
	return err
}
