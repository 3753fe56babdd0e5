package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDisplay struct {
	mu     sync.Mutex
	frames []string
	err    error
}

func (d *recordingDisplay) Show(frame string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, frame)
	return d.err
}

func (d *recordingDisplay) shown() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.frames...)
}

func TestCyclerIdle(t *testing.T) {
	c := NewCycler(&recordingDisplay{}, time.Millisecond)
	assert.Equal(t, CyclerIdle, c.State())

	_, ok := c.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, c.Run(context.Background()), ErrIdle)
}

func TestCyclerWrapsAround(t *testing.T) {
	c := NewCycler(&recordingDisplay{}, time.Millisecond)
	total, err := c.Load("a.txt////AQID", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, CyclerCycling, c.State())

	want := []string{
		" =!= 1 =!= 4 =!= a.tx",
		" =!= 2 =!= 4 =!= t///",
		" =!= 3 =!= 4 =!= /AQI",
		" =!= 4 =!= 4 =!= D",
	}
	for pass := 0; pass < 3; pass++ {
		for _, frame := range want {
			got, ok := c.Next()
			require.True(t, ok)
			assert.Equal(t, frame, got)
		}
	}
	assert.Equal(t, 3, c.Loops())
	assert.Equal(t, want, c.Frames())
}

func TestCyclerSingleBlock(t *testing.T) {
	c := NewCycler(&recordingDisplay{}, time.Millisecond)
	total, err := c.Load("e////", 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	for i := 0; i < 3; i++ {
		frame, ok := c.Next()
		require.True(t, ok)
		assert.Equal(t, " =!= 1 =!= 1 =!= e////", frame)
	}
}

func TestCyclerReloadRestartsAtFirstBlock(t *testing.T) {
	c := NewCycler(&recordingDisplay{}, time.Millisecond)
	_, err := c.Load("abcdef", 2)
	require.NoError(t, err)
	c.Next()
	c.Next()

	_, err = c.Load("uvwxyz", 3)
	require.NoError(t, err)
	frame, _ := c.Next()
	assert.Equal(t, " =!= 1 =!= 2 =!= uvw", frame)

	c.Unload()
	assert.Equal(t, CyclerIdle, c.State())
}

func TestCyclerRunUntilStopped(t *testing.T) {
	display := &recordingDisplay{}
	c := NewCycler(display, time.Millisecond)
	_, err := c.Load("abcdefghij", 3)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	require.Eventually(t, func() bool { return len(display.shown()) >= 10 }, 5*time.Second, time.Millisecond)
	c.Stop()
	c.Stop()
	require.NoError(t, <-done)

	shown := display.shown()
	assert.Equal(t, " =!= 1 =!= 4 =!= abc", shown[0])
	assert.Equal(t, " =!= 4 =!= 4 =!= j", shown[3])
	assert.Equal(t, " =!= 1 =!= 4 =!= abc", shown[4])
}

func TestCyclerRunCancelled(t *testing.T) {
	c := NewCycler(&recordingDisplay{}, time.Hour)
	_, err := c.Load("abc", 3)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}

func TestCyclerRunDisplayError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCycler(&recordingDisplay{err: boom}, time.Millisecond)
	_, err := c.Load("abc", 3)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Run(context.Background()), boom)
}
