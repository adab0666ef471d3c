package internal

import (
	"strconv"
	"strings"
)

// Code writer tokens
const (
	IndentText       = "\t"
	LinePragmaPrefix = "//line "
	LinePragmaSep    = ":"
)

// CodeWriter accumulates generated Go source and tracks the location of the
// cursor after every write, so callers can record line mappings.
type CodeWriter struct {
	sb          strings.Builder
	loc         SourceLocation
	indent      int
	atLineStart bool
}

// NewCodeWriter creates an empty writer.
func NewCodeWriter() *CodeWriter {
	return &CodeWriter{atLineStart: true}
}

// Location returns where the next write will land.
func (w *CodeWriter) Location() SourceLocation {
	return w.loc
}

// IncreaseIndent indents subsequent lines by one tab.
func (w *CodeWriter) IncreaseIndent() *CodeWriter {
	w.indent++
	return w
}

// DecreaseIndent removes one level of indentation.
func (w *CodeWriter) DecreaseIndent() *CodeWriter {
	if w.indent > 0 {
		w.indent--
	}
	return w
}

// Indent returns the current indentation depth.
func (w *CodeWriter) Indent() int {
	return w.indent
}

// Write appends text. At the start of a line the current indentation is
// written first; text spanning several lines is written verbatim.
func (w *CodeWriter) Write(text string) *CodeWriter {
	if text == "" {
		return w
	}
	if w.atLineStart && text[0] != CharNewline {
		w.raw(strings.Repeat(IndentText, w.indent))
	}
	w.raw(text)
	return w
}

// WriteLine appends text followed by a line break.
func (w *CodeWriter) WriteLine(text string) *CodeWriter {
	w.Write(text)
	w.raw(string(CharNewline))
	return w
}

// WritePadding starts the current line with n spaces instead of the
// indentation, so the next write lands on a chosen column.
func (w *CodeWriter) WritePadding(n int) *CodeWriter {
	w.EnsureNewLine()
	w.raw(strings.Repeat(string(CharSpace), max(n, 0)))
	w.atLineStart = false
	return w
}

// WriteStringLiteral writes s as a double-quoted Go string literal.
func (w *CodeWriter) WriteStringLiteral(s string) *CodeWriter {
	return w.Write(strconv.Quote(s))
}

// WriteLinePragma writes a //line directive pointing the following line at
// file:line. Directives must start in column one.
func (w *CodeWriter) WriteLinePragma(file string, line int) *CodeWriter {
	w.EnsureNewLine()
	w.raw(LinePragmaPrefix + file + LinePragmaSep + strconv.Itoa(line) + string(CharNewline))
	return w
}

// WriteLinePragmaReset points the following line back at its own position in
// the generated file.
func (w *CodeWriter) WriteLinePragmaReset(file string) *CodeWriter {
	w.EnsureNewLine()
	return w.WriteLinePragma(file, w.loc.LineIndex+2)
}

// EnsureNewLine terminates the current line if anything was written to it.
func (w *CodeWriter) EnsureNewLine() *CodeWriter {
	if !w.atLineStart {
		w.raw(string(CharNewline))
	}
	return w
}

// GenerateCode returns everything written so far.
func (w *CodeWriter) GenerateCode() string {
	return w.sb.String()
}

func (w *CodeWriter) raw(text string) {
	if text == "" {
		return
	}
	w.sb.WriteString(text)
	w.loc = w.loc.Advance(text)
	w.atLineStart = text[len(text)-1] == CharNewline
}
