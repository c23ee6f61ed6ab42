package content

import "fmt"

// MalformedInputError reports input text that could not be parsed as JSON.
type MalformedInputError struct {
	Cause error
}

func (e *MalformedInputError) Error() string {
	if e.Cause == nil {
		return "malformed input"
	}
	return fmt.Sprintf("malformed input: %v", e.Cause)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}

// ShapeError reports a projection applied to the wrong Value variant,
// e.g. Elements() on an object.
type ShapeError struct {
	Expected Kind
	Actual   Kind
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// DecodeError reports a failed conversion of otherwise well-formed
// content into a requested target type.
type DecodeError struct {
	Target string
	Raw    string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot decode %q as %s: %v", e.Raw, e.Target, e.Cause)
	}
	return fmt.Sprintf("cannot decode %q as %s", e.Raw, e.Target)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
