package tools

import "fmt"

// NotFoundError reports a tool call naming an unregistered tool.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// ExecutionError reports a failed tool invocation, tagged with the tool
// name and wrapping the underlying cause (argument decode failures
// included).
type ExecutionError struct {
	Name  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool execution failed: %s: %v", e.Name, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
