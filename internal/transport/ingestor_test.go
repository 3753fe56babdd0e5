package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrcast/internal/processor"
	"qrcast/internal/protocol"
	"qrcast/internal/store"
	"qrcast/pkg/types"
)

func senderFrames(t *testing.T, name string, data []byte, blockSize int) []string {
	t.Helper()

	encoded, err := protocol.BuildPayload(name, data)
	require.NoError(t, err)
	c := NewCycler(&recordingDisplay{}, 0)
	_, err = c.Load(encoded, blockSize)
	require.NoError(t, err)
	return c.Frames()
}

func TestIngestDropsMalformedText(t *testing.T) {
	r := processor.NewReassembler(store.NewMemoryLedger(""))
	i := NewIngestor(r)

	_, ok, err := i.Ingest(" =!= 1 =!= 2 =!= ab")
	require.NoError(t, err)
	require.True(t, ok)
	before := r.Progress()

	_, ok, err = i.Ingest("not a frame")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, r.Progress())

	scans, dropped := i.Stats()
	assert.Equal(t, 2, scans)
	assert.Equal(t, 1, dropped)
}

func TestIngestorRunCompletes(t *testing.T) {
	frames := senderFrames(t, "a.txt", []byte{1, 2, 3}, 4)
	r := processor.NewReassembler(store.NewMemoryLedger(""))

	scans := make(chan string, 16)
	scans <- "https://example.com"
	for i := len(frames) - 1; i >= 0; i-- {
		scans <- frames[i]
		scans <- frames[i]
	}
	progressCh := make(chan types.ProgressUpdate, 16)

	require.NoError(t, NewIngestor(r).Run(context.Background(), scans, progressCh))

	close(progressCh)
	var last types.ProgressUpdate
	for update := range progressCh {
		last = update
	}
	assert.Equal(t, len(frames), last.Received)
	assert.Equal(t, len(frames), last.Total)

	payload, err := r.Result()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", payload.Name)
	assert.Equal(t, []byte{1, 2, 3}, payload.Data)
}

func TestIngestorRunScansEnded(t *testing.T) {
	frames := senderFrames(t, "a.txt", []byte("abcdef"), 4)
	r := processor.NewReassembler(store.NewMemoryLedger(""))

	scans := make(chan string, 1)
	scans <- frames[0]
	close(scans)

	assert.ErrorIs(t, NewIngestor(r).Run(context.Background(), scans, nil), ErrScansEnded)
}

func TestIngestorRunCorruptPayload(t *testing.T) {
	r := processor.NewReassembler(store.NewMemoryLedger(""))

	scans := make(chan string, 1)
	scans <- protocol.EncodeFrame(1, 1, "no separator")
	close(scans)

	assert.ErrorIs(t, NewIngestor(r).Run(context.Background(), scans, nil), protocol.ErrCorruptPayload)
}

func TestIngestorRunCancelled(t *testing.T) {
	r := processor.NewReassembler(store.NewMemoryLedger(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewIngestor(r).Run(ctx, make(chan string), nil), context.Canceled)
}
