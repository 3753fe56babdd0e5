package transport

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineScanner(t *testing.T) {
	input := " =!= 1 =!= 2 =!= ab\r\n\n =!= 2 =!= 2 =!= cd\n"
	out := make(chan string, 4)

	require.NoError(t, NewLineScanner(strings.NewReader(input)).Scan(context.Background(), out))
	close(out)

	var got []string
	for text := range out {
		got = append(got, text)
	}
	assert.Equal(t, []string{" =!= 1 =!= 2 =!= ab", " =!= 2 =!= 2 =!= cd"}, got)
}

func TestLineScannerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLineScanner(strings.NewReader("one\ntwo\n")).Scan(ctx, make(chan string))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImageScannerMissingDir(t *testing.T) {
	err := NewImageScanner("/nonexistent/frames").Scan(context.Background(), make(chan string, 1))
	assert.Error(t, err)
}
