package tools

import (
	"context"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

// Tool is a registered capability: a name bound to an argument decoder,
// an invocation function and an output encoder. Bindings are immutable
// after construction and must be safe to call from multiple concurrent
// contexts.
type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema

	decode func(content.Value) (any, error)
	invoke func(context.Context, any) (any, error)
	encode func(any) (content.Value, error)
}

// NewTool assembles a tool from explicit decode/invoke/encode functions.
func NewTool(
	name string,
	description string,
	parameters *jsonschema.Schema,
	decode func(content.Value) (any, error),
	invoke func(context.Context, any) (any, error),
	encode func(any) (content.Value, error),
) (*Tool, error) {
	if name == "" {
		return nil, errors.New("tool name cannot be empty")
	}
	if decode == nil || invoke == nil || encode == nil {
		return nil, errors.Errorf("tool %s: decode, invoke and encode are all required", name)
	}
	return &Tool{
		Name:        name,
		Description: description,
		Parameters:  parameters,
		decode:      decode,
		invoke:      invoke,
		encode:      encode,
	}, nil
}

// DecodeArguments converts structured arguments into the tool's input
// shape.
func (t *Tool) DecodeArguments(v content.Value) (any, error) {
	return t.decode(v)
}

// Invoke runs the tool on decoded input.
func (t *Tool) Invoke(ctx context.Context, input any) (any, error) {
	return t.invoke(ctx, input)
}

// EncodeOutput converts the tool's result into structured content.
func (t *Tool) EncodeOutput(output any) (content.Value, error) {
	return t.encode(output)
}

// Call performs a full decode → invoke → encode sequence, wrapping any
// failure as an ExecutionError tagged with the tool name.
func (t *Tool) Call(ctx context.Context, args content.Value) (content.Value, error) {
	input, err := t.decode(args)
	if err != nil {
		return content.Value{}, &ExecutionError{Name: t.Name, Cause: errors.Wrap(err, "decode arguments")}
	}
	output, err := t.invoke(ctx, input)
	if err != nil {
		return content.Value{}, &ExecutionError{Name: t.Name, Cause: err}
	}
	encoded, err := t.encode(output)
	if err != nil {
		return content.Value{}, &ExecutionError{Name: t.Name, Cause: errors.Wrap(err, "encode output")}
	}
	return encoded, nil
}

// Definition renders the tool as a transcript-level definition for
// embedding into an Instructions entry.
func (t *Tool) Definition() transcript.ToolDefinition {
	params := content.Null()
	if t.Parameters != nil {
		if v, err := content.FromGo(t.Parameters); err == nil {
			params = v
		}
	}
	return transcript.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// NewToolFromFunc builds a tool binding from a plain Go function.
// Supported signatures:
//
//	func(Input) (Output, error)
//	func(context.Context, Input) (Output, error)
//
// The argument schema is generated by reflection over Input; arguments
// are decoded weakly typed since structured content carries scalars as
// strings.
func NewToolFromFunc(name string, description string, fn any) (*Tool, error) {
	funcType := reflect.TypeOf(fn)
	if funcType == nil || funcType.Kind() != reflect.Func {
		return nil, errors.New("provided value is not a function")
	}
	funcValue := reflect.ValueOf(fn)

	if funcType.NumOut() != 2 || !funcType.Out(1).Implements(errorType) {
		return nil, errors.New("tool function must return (Output, error)")
	}

	var inputType reflect.Type
	wantsContext := false
	switch funcType.NumIn() {
	case 1:
		if funcType.In(0) == contextType {
			return nil, errors.New("tool function taking only a context must also take an input struct")
		}
		inputType = funcType.In(0)
	case 2:
		if funcType.In(0) != contextType {
			return nil, errors.New("two-argument tool function must be (context.Context, Input)")
		}
		wantsContext = true
		inputType = funcType.In(1)
	default:
		return nil, errors.New("tool function must take (Input) or (context.Context, Input)")
	}
	if inputType.Kind() != reflect.Struct {
		return nil, errors.Errorf("tool input must be a struct, got %s", inputType.Kind())
	}

	schema, err := schemaFromType(inputType)
	if err != nil {
		return nil, errors.Wrapf(err, "generate schema for %s", name)
	}

	decode := func(v content.Value) (any, error) {
		ptr := reflect.New(inputType)
		if err := content.DecodeInto(v, ptr.Interface()); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}

	invoke := func(ctx context.Context, input any) (any, error) {
		args := make([]reflect.Value, 0, 2)
		if wantsContext {
			args = append(args, reflect.ValueOf(ctx))
		}
		args = append(args, reflect.ValueOf(input))
		results := funcValue.Call(args)
		if errVal := results[1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		return results[0].Interface(), nil
	}

	encode := func(output any) (content.Value, error) {
		return content.FromGo(output)
	}

	return NewTool(name, description, schema, decode, invoke, encode)
}

func schemaFromType(inputType reflect.Type) (*jsonschema.Schema, error) {
	instance := reflect.New(inputType).Elem().Interface()
	reflector := jsonschema.Reflector{
		// expand definitions inline instead of using $refs
		DoNotReference: true,
	}
	schema := reflector.Reflect(instance)
	if schema.Type == "" && schema.Ref == "" {
		schema.Type = "object"
	}
	return schema, nil
}
