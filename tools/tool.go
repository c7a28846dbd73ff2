// Package tools provides the filesystem tool set offered to the model.
//
// Information Hiding:
// - Tool execution details hidden behind Registry.Execute
// - Input schemas derived from the typed inputs, never written by hand
// - Error handling internalized per tool: every call yields a Result
package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned when the model names a tool outside the set.
var ErrUnknownTool = errors.New("unknown tool")

// Kind identifies one tool of the closed tool set.
type Kind int

const (
	KindReadFile Kind = iota
	KindWriteFile
	KindListDirectory
	KindSearchFiles
	KindDeleteFile
)

var kindNames = [...]string{
	KindReadFile:      "readFile",
	KindWriteFile:     "writeFile",
	KindListDirectory: "listDirectory",
	KindSearchFiles:   "searchFiles",
	KindDeleteFile:    "deleteFile",
}

// String returns the wire name the model uses for the tool.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every tool kind in presentation order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind maps a wire name to its Kind. Names are case-sensitive.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Call is a decoded, validated tool invocation. The set of implementations
// is closed: one input type per Kind.
type Call interface {
	Kind() Kind
	isCall()
}

// ReadFileInput reads a file as text.
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"Path to the file"`
}

// WriteFileInput creates or overwrites a file.
type WriteFileInput struct {
	Path    string `json:"path" jsonschema:"Path to the file"`
	Content string `json:"content" jsonschema:"Content to write"`
}

// ListDirectoryInput lists the entries of one directory.
type ListDirectoryInput struct {
	Path string `json:"path" jsonschema:"Path to the directory"`
}

// SearchFilesInput globs for files below Directory.
type SearchFilesInput struct {
	Pattern   string `json:"pattern" jsonschema:"Glob pattern (e.g. '**/*.go', 'src/*.json')"`
	Directory string `json:"directory,omitempty" jsonschema:"Directory to search in (defaults to current directory)"`
}

// DeleteFileInput removes a single file.
type DeleteFileInput struct {
	Path string `json:"path" jsonschema:"Path to the file to delete"`
}

func (ReadFileInput) Kind() Kind      { return KindReadFile }
func (WriteFileInput) Kind() Kind     { return KindWriteFile }
func (ListDirectoryInput) Kind() Kind { return KindListDirectory }
func (SearchFilesInput) Kind() Kind   { return KindSearchFiles }
func (DeleteFileInput) Kind() Kind    { return KindDeleteFile }

func (ReadFileInput) isCall()      {}
func (WriteFileInput) isCall()     {}
func (ListDirectoryInput) isCall() {}
func (SearchFilesInput) isCall()   {}
func (DeleteFileInput) isCall()    {}

// Result represents the result of a tool execution.
// Success is determined by whether Error is nil.
type Result struct {
	Output string
	Error  error
}

// Success returns true if the tool execution succeeded.
func (r Result) Success() bool {
	return r.Error == nil
}

// Text renders the result the way the model sees it.
func (r Result) Text() string {
	if r.Error != nil {
		return "Error: " + r.Error.Error()
	}
	return r.Output
}

// SuccessResult creates a successful tool result.
func SuccessResult(output string) Result {
	return Result{Output: output}
}

// FailureResult creates a failed tool result.
func FailureResult(err error) Result {
	return Result{Error: err}
}

// FailureResultf creates a failed tool result with a formatted error message.
func FailureResultf(format string, args ...interface{}) Result {
	return Result{Error: fmt.Errorf(format, args...)}
}
