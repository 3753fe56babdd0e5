package processor

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"qrcast/internal/protocol"
	"qrcast/internal/store"
)

var ErrIncomplete = errors.New("not all blocks have been received")

// State of a receive session
type State int

const (
	StateEmpty      State = iota // No total established
	StateCollecting              // Total known, ledger partially filled
	StateComplete                // Every index 1..total present
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCollecting:
		return "collecting"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Progress is a snapshot of a receive session
type Progress struct {
	Received  int   // Distinct indices seen
	Total     int   // Declared total, 0 when empty
	Index     int   // Index of the frame just accepted
	State     State // Session state after the frame
	Restarted bool  // The frame declared a new total and cleared the ledger
}

// Reassembler collects frames of one transfer in any order and rebuilds the
// payload once every block has been seen. It exclusively owns its ledger.
type Reassembler struct {
	ledger store.Ledger

	mu       sync.Mutex
	state    State
	total    int
	present  map[int]bool
	received int
	last     int

	result      *protocol.Payload
	assembleErr error
}

// NewReassembler creates a reassembler in the empty state on top of ledger.
// Entries already in the ledger are ignored until Restore is called.
func NewReassembler(ledger store.Ledger) *Reassembler {
	return &Reassembler{
		ledger:  ledger,
		state:   StateEmpty,
		present: make(map[int]bool),
	}
}

// Accept records a decoded frame. Duplicates overwrite the earlier content.
// A frame with a different total starts a new session. The only error a
// caller must treat as fatal is ErrCorruptPayload, returned when the session
// completes but the assembled text cannot be decoded.
func (r *Reassembler) Accept(frame protocol.Frame) (Progress, error) {
	if frame.Total <= 0 || frame.Index <= 0 || frame.Index > frame.Total {
		return r.Progress(), fmt.Errorf("%w: index %d of %d", protocol.ErrMalformedFrame, frame.Index, frame.Total)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	restarted := false
	if r.state != StateEmpty && frame.Total != r.total {
		log.Printf("%v: %d -> %d, resetting session %s", protocol.ErrTotalMismatch, r.total, frame.Total, r.ledger.SessionKey())
		if err := r.resetLocked(); err != nil {
			return r.progressLocked(), err
		}
		restarted = true
	}

	if r.state == StateEmpty {
		if err := r.ledger.SetTotal(frame.Total); err != nil {
			return r.progressLocked(), fmt.Errorf("failed to record total: %w", err)
		}
		r.total = frame.Total
		r.state = StateCollecting
	}

	if err := r.ledger.Put(frame.Index, frame.Content); err != nil {
		return r.progressLocked(), fmt.Errorf("failed to record block %d: %w", frame.Index, err)
	}
	if !r.present[frame.Index] {
		r.present[frame.Index] = true
		r.received++
	}
	r.last = frame.Index

	wasComplete := r.state == StateComplete
	if r.received == r.total {
		r.state = StateComplete
	} else {
		r.state = StateCollecting
	}

	progress := r.progressLocked()
	progress.Restarted = restarted

	if r.state == StateComplete && !wasComplete {
		r.assembleLocked()
		if r.assembleErr != nil {
			return progress, r.assembleErr
		}
	}
	return progress, nil
}

// Result returns the rebuilt payload of a complete session. It can be called
// any number of times without further scans.
func (r *Reassembler) Result() (protocol.Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateComplete {
		return protocol.Payload{}, fmt.Errorf("%w: %d of %d", ErrIncomplete, r.received, r.total)
	}
	if r.result == nil && r.assembleErr == nil {
		r.assembleLocked()
	}
	if r.assembleErr != nil {
		return protocol.Payload{}, r.assembleErr
	}
	return *r.result, nil
}

// Progress returns the current state of the session
func (r *Reassembler) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progressLocked()
}

// Missing returns the indices not yet received, in ascending order
func (r *Reassembler) Missing() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	missing := make([]int, 0, r.total-r.received)
	for i := 1; i <= r.total; i++ {
		if !r.present[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

// Reset abandons the session and clears the ledger
func (r *Reassembler) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetLocked()
}

// Restore rebuilds the in-memory index from entries left in the ledger by an
// earlier run, so an interrupted receive can continue where it stopped.
func (r *Reassembler) Restore() (Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total, err := r.ledger.Total()
	if err != nil {
		return r.progressLocked(), fmt.Errorf("failed to read stored total: %w", err)
	}
	indices, err := r.ledger.Indices()
	if err != nil {
		return r.progressLocked(), fmt.Errorf("failed to read stored blocks: %w", err)
	}

	r.clearLocked()
	if total <= 0 {
		return r.progressLocked(), nil
	}

	r.total = total
	r.state = StateCollecting
	for _, index := range indices {
		if index <= total {
			r.present[index] = true
			r.received++
		}
	}
	if r.received == r.total {
		r.state = StateComplete
	}
	return r.progressLocked(), nil
}

func (r *Reassembler) progressLocked() Progress {
	return Progress{
		Received: r.received,
		Total:    r.total,
		Index:    r.last,
		State:    r.state,
	}
}

func (r *Reassembler) resetLocked() error {
	r.clearLocked()
	if err := r.ledger.Reset(); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	return nil
}

func (r *Reassembler) clearLocked() {
	r.state = StateEmpty
	r.total = 0
	r.present = make(map[int]bool)
	r.received = 0
	r.last = 0
	r.result = nil
	r.assembleErr = nil
}

// assembleLocked joins ledger entries 1..total and decodes the payload
func (r *Reassembler) assembleLocked() {
	blocks := make([]Block, 0, r.total)
	for i := 1; i <= r.total; i++ {
		content, ok, err := r.ledger.Get(i)
		if err != nil {
			r.assembleErr = fmt.Errorf("failed to read block %d: %w", i, err)
			return
		}
		if !ok {
			r.assembleErr = fmt.Errorf("%w: block %d missing from ledger", protocol.ErrCorruptPayload, i)
			return
		}
		blocks = append(blocks, Block{Index: i, Total: r.total, Content: content})
	}

	payload, err := protocol.UnbuildPayload(JoinBlocks(blocks))
	if err != nil {
		r.assembleErr = err
		return
	}
	r.result = &payload
}
