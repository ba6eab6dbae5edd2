package errors

import (
	"fmt"
	"os"
)

// EngineError is the interface implemented by every diagnostic the engine can
// surface to a host: parse diagnostics, compile-time binding errors, and
// runtime failures that occur before a JS exception value even exists yet
// (e.g. a host module failing to load).
//
// A thrown ECMAScript value (the result of the `throw` statement) is never
// wrapped in an EngineError; it travels as a plain Value through the VM's
// exception-handler stack (see pkg/vm) and only becomes visible here if it
// escapes every handler and reaches the top-level job driver.
type EngineError interface {
	error
	Pos() Position
	Kind() string // "Syntax", "Resolve", "Compile", "Runtime", "Host"
	Message() string
}

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }

// ResolveError represents a failure during compile-time scope/binding
// analysis: redeclaration of a lexical binding, assignment to a const,
// reference to a binding that cannot be statically resolved in a context
// that requires it, and similar static ECMAScript constraints.
type ResolveError struct {
	Position
	Msg string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("SyntaxError (binding) at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ResolveError) Pos() Position   { return e.Position }
func (e *ResolveError) Kind() string    { return "Resolve" }
func (e *ResolveError) Message() string { return e.Msg }

// CompileError represents an error while lowering an AST into bytecode.
type CompileError struct {
	Position
	Msg string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("CompileError at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *CompileError) Pos() Position   { return e.Position }
func (e *CompileError) Kind() string    { return "Compile" }
func (e *CompileError) Message() string { return e.Msg }

// RuntimeError wraps a thrown value that escaped every handler, for
// presentation to a host that does not want to inspect VM values directly.
type RuntimeError struct {
	Position
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Uncaught error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *RuntimeError) Pos() Position   { return e.Position }
func (e *RuntimeError) Kind() string    { return "Runtime" }
func (e *RuntimeError) Message() string { return e.Msg }

// HostError represents a failure in a host hook: module resolution, file
// read, or any other I/O the engine delegates to its embedder.
type HostError struct {
	Position
	Msg string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("HostError: %s", e.Msg)
}
func (e *HostError) Pos() Position   { return e.Position }
func (e *HostError) Kind() string    { return "Host" }
func (e *HostError) Message() string { return e.Msg }

// DisplayErrors prints a list of engine errors to stderr in a REPL-friendly
// form. sourceCode is optional and currently unused beyond future caret
// rendering; it is accepted so call sites don't need to special-case it.
func DisplayErrors(errs []EngineError, sourceCode ...string) {
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%s\n", e.Error())
	}
}
