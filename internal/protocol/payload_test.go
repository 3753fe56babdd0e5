package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload(t *testing.T) {
	encoded, err := BuildPayload("a.txt", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "a.txt////AQID", encoded)

	encoded, err = BuildPayload("empty.bin", nil)
	require.NoError(t, err)
	assert.Equal(t, "empty.bin////", encoded)
}

func TestBuildPayloadRejectsReservedNames(t *testing.T) {
	for _, name := range []string{"a////b", "x =!= y", "line\nbreak", "cr\r", "a/", "notes///", "/"} {
		_, err := BuildPayload(name, []byte("data"))
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	cases := []Payload{
		{Name: "a.txt", Data: []byte{1, 2, 3}},
		{Name: "empty", Data: []byte{}},
		{Name: "résumé ☃.txt", Data: []byte("héllo wörld")},
		// base64 of 0xFF 0xFF 0xFF is "////"
		{Name: "ones.bin", Data: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{Name: "", Data: []byte{0}},
		{Name: "dir/a///b", Data: []byte{0xff, 0xff, 0xff}},
	}
	for _, p := range cases {
		encoded, err := BuildPayload(p.Name, p.Data)
		require.NoError(t, err)

		got, err := UnbuildPayload(encoded)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
		assert.Len(t, got.Data, len(p.Data))
		if len(p.Data) > 0 {
			assert.Equal(t, p.Data, got.Data)
		}
	}
}

func TestUnbuildPayloadCorrupt(t *testing.T) {
	_, err := UnbuildPayload("no-separator-here")
	assert.ErrorIs(t, err, ErrCorruptPayload)

	_, err = UnbuildPayload("a.txt////not*base64")
	assert.ErrorIs(t, err, ErrCorruptPayload)

	_, err = UnbuildPayload("a.txt////AQI")
	assert.ErrorIs(t, err, ErrCorruptPayload)
}
