package content

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Parse decodes JSON text into a Value. JSON numbers and booleans are
// canonicalized to their string form ("42", "true") so that every
// scalar is carried as a string variant; structured round-tripping is
// only guaranteed for string/array/object/null.
func Parse(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, &MalformedInputError{Cause: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, &MalformedInputError{Cause: errors.New("trailing data after JSON value")}
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var pairs []Pair
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, errors.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				pairs = append(pairs, Pair{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Object(pairs...), nil
		case '[':
			var elems []Value
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(elems...), nil
		default:
			return Value{}, errors.Errorf("unexpected delimiter %q", t.String())
		}
	case string:
		return String(t), nil
	case json.Number:
		return String(t.String()), nil
	case bool:
		if t {
			return String("true"), nil
		}
		return String("false"), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, errors.Errorf("unexpected JSON token %v", tok)
	}
}

// Encode renders the Value as JSON text. Object keys appear in
// insertion order; Parse(Encode(v)) is structurally equal to v.
func Encode(v Value) string {
	var buf bytes.Buffer
	encodeValue(&buf, v)
	return buf.String()
}

func encodeValue(buf *bytes.Buffer, v Value) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, _ := json.Marshal(v.str)
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeValue(buf, e)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		for p := v.obj.Oldest(); p != nil; p = p.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, _ := json.Marshal(p.Key)
			buf.Write(kb)
			buf.WriteByte(':')
			encodeValue(buf, p.Value)
		}
		buf.WriteByte('}')
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(Encode(v)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromGo converts any JSON-serializable Go value into a Value by
// marshalling it and parsing the result. Struct field order is
// preserved as the object key order.
func FromGo(val any) (Value, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return Value{}, errors.Wrap(err, "marshal go value")
	}
	return Parse(string(b))
}
