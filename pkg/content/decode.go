package content

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ToGo converts a Value into plain Go data: string, []any,
// map[string]any or nil. Object key order is lost; use Properties when
// order matters.
func ToGo(v Value) any {
	switch v.kind {
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = ToGo(e)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for p := v.obj.Oldest(); p != nil; p = p.Next() {
			out[p.Key] = ToGo(p.Value)
		}
		return out
	default:
		return nil
	}
}

// DecodeInto decodes a Value into a typed Go target. Since scalars are
// carried as strings, decoding is weakly typed: "22" fills an int
// field, "true" a bool field. Field names follow json tags.
func DecodeInto(v Value, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return &DecodeError{Target: fmt.Sprintf("%T", target), Raw: Encode(v), Cause: err}
	}
	if err := dec.Decode(ToGo(v)); err != nil {
		return &DecodeError{Target: fmt.Sprintf("%T", target), Raw: Encode(v), Cause: err}
	}
	return nil
}
