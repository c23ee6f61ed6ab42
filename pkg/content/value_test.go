package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.Equal(t, KindNull, v.Kind())
	assert.True(t, v.IsNull())
}

func TestValue_Text(t *testing.T) {
	v := String("hello")
	s, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	_, err = Array().Text()
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, KindString, shapeErr.Expected)
	assert.Equal(t, KindArray, shapeErr.Actual)
}

func TestValue_Bool(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"True", true},
		{"yes", true},
		{"1", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{" TRUE ", true},
	}
	for _, tc := range cases {
		got, err := String(tc.in).Bool()
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	_, err := String("maybe").Bool()
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "bool", decodeErr.Target)

	_, err = Null().Bool()
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestValue_IntFloat(t *testing.T) {
	n, err := String("42").Int()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	f, err := String("3.25").Float()
	require.NoError(t, err)
	assert.InDelta(t, 3.25, f, 1e-9)

	_, err = String("forty-two").Int()
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestValue_ObjectOrderAndLookup(t *testing.T) {
	v := Object(
		Pair{Key: "b", Value: String("2")},
		Pair{Key: "a", Value: String("1")},
	)
	pairs, err := v.Properties()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "b", pairs[0].Key)
	assert.Equal(t, "a", pairs[1].Key)

	val, ok, err := v.Property("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, val.Equal(String("1")))

	_, ok, err = v.Property("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = String("x").Properties()
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestValue_Equal(t *testing.T) {
	a := Object(
		Pair{Key: "k", Value: Array(String("a"), Null())},
	)
	b := Object(
		Pair{Key: "k", Value: Array(String("a"), Null())},
	)
	assert.True(t, a.Equal(b))

	// key order is part of the structure
	c := Object(
		Pair{Key: "x", Value: String("1")},
		Pair{Key: "y", Value: String("2")},
	)
	d := Object(
		Pair{Key: "y", Value: String("2")},
		Pair{Key: "x", Value: String("1")},
	)
	assert.False(t, c.Equal(d))

	assert.False(t, String("a").Equal(Null()))
	assert.True(t, Null().Equal(Null()))
}
