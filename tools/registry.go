// Tool registry: definitions for the model and total dispatch of its calls.
//
// Information Hiding:
// - Schema generation and validation hidden
// - String names only exist at the Decode boundary

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/richinex/fleet/llm"
)

type toolSpec struct {
	kind        Kind
	description string
	parameters  map[string]interface{}
	schema      *jsonschema.Resolved
}

// Registry holds the fixed tool set. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	specs []toolSpec
}

// NewRegistry builds the tool set with schemas derived from the input types.
func NewRegistry() *Registry {
	return &Registry{specs: []toolSpec{
		mustSpec[ReadFileInput](KindReadFile, "Read the contents of a file at the given path"),
		mustSpec[WriteFileInput](KindWriteFile, "Write content to a file, creating it or overwriting if it exists"),
		mustSpec[ListDirectoryInput](KindListDirectory, "List the contents of a directory"),
		mustSpec[SearchFilesInput](KindSearchFiles, "Search for files matching a glob pattern"),
		mustSpec[DeleteFileInput](KindDeleteFile, "Delete a file at the given path"),
	}}
}

// mustSpec panics on schema errors: the inputs are static types, so a
// failure here is a programming error.
func mustSpec[T any](kind Kind, description string) toolSpec {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("tools: schema for %s: %v", kind, err))
	}
	// Unknown argument keys are ignored, not rejected.
	schema.AdditionalProperties = nil

	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("tools: resolve schema for %s: %v", kind, err))
	}

	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema for %s: %v", kind, err))
	}
	var params map[string]interface{}
	if err := json.Unmarshal(data, &params); err != nil {
		panic(fmt.Sprintf("tools: decode schema for %s: %v", kind, err))
	}

	return toolSpec{kind: kind, description: description, parameters: params, schema: resolved}
}

// Definitions returns the tool definitions in a stable order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, len(r.specs))
	for i, s := range r.specs {
		defs[i] = llm.ToolDefinition{
			Name:        s.kind.String(),
			Description: s.description,
			Parameters:  s.parameters,
		}
	}
	return defs
}

// Decode turns a model-issued name and raw arguments into a typed Call.
// Unknown names wrap ErrUnknownTool; arguments are validated against the
// tool's schema before decoding.
func (r *Registry) Decode(name string, args json.RawMessage) (Call, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	spec := r.specs[kind]

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	var instance map[string]interface{}
	if err := json.Unmarshal(args, &instance); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", kind, err)
	}
	if instance == nil {
		instance = map[string]interface{}{}
	}
	if err := spec.schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", kind, err)
	}

	switch kind {
	case KindReadFile:
		return decodeInput[ReadFileInput](kind, args)
	case KindWriteFile:
		return decodeInput[WriteFileInput](kind, args)
	case KindListDirectory:
		return decodeInput[ListDirectoryInput](kind, args)
	case KindSearchFiles:
		return decodeInput[SearchFilesInput](kind, args)
	case KindDeleteFile:
		return decodeInput[DeleteFileInput](kind, args)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

func decodeInput[T Call](kind Kind, args json.RawMessage) (Call, error) {
	var in T
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", kind, err)
	}
	return in, nil
}

// Execute decodes and runs one tool call. It never fails: decoding errors,
// I/O errors and panics all come back as a failure Result.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			result = FailureResultf("tool %s panicked: %v", name, p)
		}
	}()

	call, err := r.Decode(name, args)
	if err != nil {
		return FailureResult(err)
	}
	return r.Run(ctx, call)
}

// Run executes an already decoded call.
func (r *Registry) Run(ctx context.Context, call Call) Result {
	if err := ctx.Err(); err != nil {
		return FailureResult(err)
	}

	switch c := call.(type) {
	case ReadFileInput:
		return readFile(c)
	case WriteFileInput:
		return writeFile(c)
	case ListDirectoryInput:
		return listDirectory(c)
	case SearchFilesInput:
		return searchFiles(ctx, c)
	case DeleteFileInput:
		return deleteFile(c)
	default:
		return FailureResultf("unsupported tool call %T", call)
	}
}
