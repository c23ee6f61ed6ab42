package model

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceStreamDrainsThenEOF(t *testing.T) {
	stream := NewSliceStream([]string{"Hel", "lo"})

	d, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hel", d.Text)

	d, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "lo", d.Text)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, stream.Close())
}

func TestFailingStreamTerminatesWithError(t *testing.T) {
	boom := errors.New("connection reset")
	stream := NewFailingStream([]string{"partial"}, boom)

	d, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", d.Text)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, boom)
}
