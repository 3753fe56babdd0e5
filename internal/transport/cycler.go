package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"qrcast/internal/processor"
)

var ErrIdle = errors.New("cycler has no payload loaded")

// CyclerState is the state of the sender loop
type CyclerState int

const (
	CyclerIdle CyclerState = iota
	CyclerCycling
)

func (s CyclerState) String() string {
	if s == CyclerCycling {
		return "cycling"
	}
	return "idle"
}

// Cycler shows the frames of a payload round-robin at a fixed interval. It
// has no notion of receiver progress and never stops on its own.
type Cycler struct {
	display  Display
	interval time.Duration

	mu     sync.Mutex
	state  CyclerState
	frames []string
	cursor int // 1-based index of the next frame
	loops  int

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCycler creates an idle cycler
func NewCycler(display Display, interval time.Duration) *Cycler {
	return &Cycler{
		display:  display,
		interval: interval,
		state:    CyclerIdle,
		stopCh:   make(chan struct{}),
	}
}

// Load splits an encoded payload into frames and starts cycling from block 1.
// It returns the block total.
func (c *Cycler) Load(encoded string, blockSize int) (int, error) {
	blocks, err := processor.SplitBlocks(encoded, blockSize)
	if err != nil {
		return 0, err
	}

	frames := make([]string, len(blocks))
	for i, b := range blocks {
		frames[i] = b.Frame()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames = frames
	c.cursor = 1
	c.loops = 0
	c.state = CyclerCycling
	return len(frames), nil
}

// Unload drops the payload and returns to idle
func (c *Cycler) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames = nil
	c.cursor = 0
	c.loops = 0
	c.state = CyclerIdle
}

// Next returns the frame under the cursor and advances it, wrapping from the
// last block back to the first. It returns false while idle.
func (c *Cycler) Next() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CyclerCycling {
		return "", false
	}

	frame := c.frames[c.cursor-1]
	c.cursor++
	if c.cursor > len(c.frames) {
		c.cursor = 1
		c.loops++
	}
	return frame, true
}

// Frames returns a copy of the loaded frames in block order
func (c *Cycler) Frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.frames...)
}

func (c *Cycler) State() CyclerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loops returns how many times the full sequence has been shown
func (c *Cycler) Loops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loops
}

// Run shows one frame immediately and then one per tick until ctx is done or
// Stop is called. A display failure ends the loop with an error.
func (c *Cycler) Run(ctx context.Context) error {
	if c.State() != CyclerCycling {
		return ErrIdle
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	lastLoops := 0
	for {
		if frame, ok := c.Next(); ok {
			if err := c.display.Show(frame); err != nil {
				return fmt.Errorf("failed to display frame: %w", err)
			}
		}
		if loops := c.Loops(); loops != lastLoops {
			lastLoops = loops
			log.Printf("Finished pass %d over all blocks", loops)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (c *Cycler) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}
