package transport

import (
	"context"
	"errors"
	"fmt"
	"log"

	"qrcast/internal/processor"
	"qrcast/internal/protocol"
	"qrcast/pkg/types"
)

var ErrScansEnded = errors.New("scan source ended before all blocks were received")

// FrameSink accepts decoded frames
type FrameSink interface {
	Accept(frame protocol.Frame) (processor.Progress, error)
}

// Ingestor turns scan events into frames for a sink. Text that is not a frame
// (another QR code in view, a misread) is dropped.
type Ingestor struct {
	sink FrameSink

	scans   int
	dropped int
}

// NewIngestor creates an ingestor feeding sink
func NewIngestor(sink FrameSink) *Ingestor {
	return &Ingestor{sink: sink}
}

// Ingest handles one scan event. ok is false when the text was not a frame.
func (i *Ingestor) Ingest(text string) (progress processor.Progress, ok bool, err error) {
	i.scans++

	frame, err := protocol.DecodeFrame(text)
	if err != nil {
		i.dropped++
		return processor.Progress{}, false, nil
	}

	progress, err = i.sink.Accept(frame)
	return progress, true, err
}

// Stats returns the number of scans seen and how many were dropped
func (i *Ingestor) Stats() (scans, dropped int) {
	return i.scans, i.dropped
}

// Run ingests scans until the sink reports completion. Progress after each
// accepted frame is sent to progressCh when it is not nil.
func (i *Ingestor) Run(ctx context.Context, scans <-chan string, progressCh chan<- types.ProgressUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, open := <-scans:
			if !open {
				return ErrScansEnded
			}

			progress, ok, err := i.Ingest(text)
			if !ok {
				continue
			}
			if err != nil {
				if errors.Is(err, protocol.ErrCorruptPayload) {
					return err
				}
				return fmt.Errorf("failed to record frame: %w", err)
			}
			if progress.Restarted {
				log.Printf("Sender changed content, started over with %d blocks", progress.Total)
			}

			if progressCh != nil {
				select {
				case progressCh <- types.ProgressUpdate{
					Received:  progress.Received,
					Total:     progress.Total,
					Index:     progress.Index,
					Restarted: progress.Restarted,
				}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if progress.State == processor.StateComplete {
				return nil
			}
		}
	}
}
