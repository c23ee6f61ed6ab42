package content

import (
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the structured interchange value passed between the session,
// the model collaborator and tools. It is a closed sum over string,
// ordered array, insertion-ordered object and null.
//
// Values are immutable after construction: constructors copy their
// inputs and accessors never expose internal storage for mutation.
// The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	arr  []Value
	obj  *orderedmap.OrderedMap[string, Value]
}

// Pair is one key/value entry of an object Value. Object key order is
// insertion order, both for iteration and serialization.
type Pair struct {
	Key   string
	Value Value
}

// Null returns the null Value.
func Null() Value {
	return Value{kind: KindNull}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Array returns an array Value holding the given elements in order.
func Array(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// Object returns an object Value from the given pairs. Later pairs with
// a duplicate key overwrite the earlier value but keep the original
// insertion position.
func Object(pairs ...Pair) Value {
	om := orderedmap.New[string, Value](len(pairs))
	for _, p := range pairs {
		om.Set(p.Key, p.Value)
	}
	return Value{kind: KindObject, obj: om}
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Text returns the underlying string of a string Value.
func (v Value) Text() (string, error) {
	if v.kind != KindString {
		return "", &ShapeError{Expected: KindString, Actual: v.kind}
	}
	return v.str, nil
}

// Elements returns the elements of an array Value.
func (v Value) Elements() ([]Value, error) {
	if v.kind != KindArray {
		return nil, &ShapeError{Expected: KindArray, Actual: v.kind}
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp, nil
}

// Properties returns the key/value pairs of an object Value in
// insertion order.
func (v Value) Properties() ([]Pair, error) {
	if v.kind != KindObject {
		return nil, &ShapeError{Expected: KindObject, Actual: v.kind}
	}
	pairs := make([]Pair, 0, v.obj.Len())
	for p := v.obj.Oldest(); p != nil; p = p.Next() {
		pairs = append(pairs, Pair{Key: p.Key, Value: p.Value})
	}
	return pairs, nil
}

// Property looks up a single key on an object Value.
func (v Value) Property(key string) (Value, bool, error) {
	if v.kind != KindObject {
		return Value{}, false, &ShapeError{Expected: KindObject, Actual: v.kind}
	}
	val, ok := v.obj.Get(key)
	return val, ok, nil
}

// Len returns the number of elements or properties; 0 for string and null.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// Bool converts a string Value to a boolean. Accepted spellings, case
// insensitive: "true"/"yes"/"1" and "false"/"no"/"0".
func (v Value) Bool() (bool, error) {
	s, err := v.Text()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, &DecodeError{Target: "bool", Raw: s}
	}
}

// Int converts a string Value to an int64.
func (v Value) Int() (int64, error) {
	s, err := v.Text()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &DecodeError{Target: "int", Raw: s, Cause: err}
	}
	return n, nil
}

// Float converts a string Value to a float64.
func (v Value) Float() (float64, error) {
	s, err := v.Text()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &DecodeError{Target: "float", Raw: s, Cause: err}
	}
	return f, nil
}

// Equal reports structural equality. Object comparison is order
// sensitive, mirroring the serialization guarantee that key order is
// insertion order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		q := other.obj.Oldest()
		for p := v.obj.Oldest(); p != nil; p = p.Next() {
			if q == nil || p.Key != q.Key || !p.Value.Equal(q.Value) {
				return false
			}
			q = q.Next()
		}
		return true
	default:
		return false
	}
}
