package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"qrcast/internal/config"
	"qrcast/internal/processor"
	"qrcast/internal/protocol"
	"qrcast/internal/reporter"
	"qrcast/internal/store"
	"qrcast/internal/transport"
	"qrcast/pkg/types"
	"qrcast/pkg/utils"
)

// ReceiverOptions configures the receiver application behavior
type ReceiverOptions struct {
	DestPath string // Required: directory to save the received file in
	Resume   bool   // Continue a session left in the ledger instead of starting fresh
}

// ReceiverApp implements receiver application logic
type ReceiverApp struct {
	config      *config.Config
	fileService *processor.FileService
	ledger      store.Ledger
	scanner     transport.Scanner
	reporter    *reporter.ProgressReporter
}

// NewReceiverApp creates a new receiver application
func NewReceiverApp(
	cfg *config.Config,
	fileService *processor.FileService,
	ledger store.Ledger,
	scanner transport.Scanner,
	progressReporter *reporter.ProgressReporter,
) *ReceiverApp {
	return &ReceiverApp{
		config:      cfg,
		fileService: fileService,
		ledger:      ledger,
		scanner:     scanner,
		reporter:    progressReporter,
	}
}

// Run collects scans until the file is complete, then writes it under
// opts.DestPath and returns the written path.
func (r *ReceiverApp) Run(ctx context.Context, opts *ReceiverOptions) (string, error) {
	// Validate required options
	if opts.DestPath == "" {
		return "", fmt.Errorf("destination path is required")
	}
	destDir, err := utils.ResolveDestinationPath(opts.DestPath)
	if err != nil {
		return "", err
	}

	reassembler := processor.NewReassembler(r.ledger)
	if opts.Resume {
		progress, err := reassembler.Restore()
		if err != nil {
			return "", fmt.Errorf("failed to resume session: %w", err)
		}
		log.Printf("Resuming session %s: %d of %d blocks already received", r.ledger.SessionKey(), progress.Received, progress.Total)
	} else if err := reassembler.Reset(); err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}

	if reassembler.Progress().State != processor.StateComplete {
		if err := r.collect(ctx, reassembler); err != nil {
			return "", err
		}
	}

	payload, err := reassembler.Result()
	if err != nil {
		return "", r.abort(reassembler, err)
	}

	destPath, metadata, err := r.fileService.WriteFile(destDir, payload)
	if err != nil {
		return "", err
	}
	log.Printf("Received %s (%s), SHA-256 %s", destPath, utils.FormatFileSize(metadata.Size), metadata.Checksum)

	// The ledger is only needed until the file has been delivered
	if err := reassembler.Reset(); err != nil {
		log.Printf("Warning: failed to clear ledger: %v", err)
	}
	return destPath, nil
}

// collect runs the scanner and feeds its output to the reassembler until
// every block has been seen
func (r *ReceiverApp) collect(ctx context.Context, reassembler *processor.Reassembler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scans := make(chan string, 64)
	scanErrCh := make(chan error, 1)
	go func() {
		defer close(scans)
		scanErrCh <- r.scanner.Scan(ctx, scans)
	}()

	progressCh := make(chan types.ProgressUpdate, 50)
	reportDone := make(chan struct{})
	go func() {
		defer close(reportDone)
		r.reporter.StartUpdatingProgress(ctx, progressCh)
	}()

	log.Printf("Waiting for scans (session %s)", r.ledger.SessionKey())
	ingestor := transport.NewIngestor(reassembler)
	err := ingestor.Run(ctx, scans, progressCh)
	close(progressCh)
	<-reportDone

	scanCount, dropped := ingestor.Stats()
	log.Printf("Processed %d scans, %d were not frames", scanCount, dropped)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, transport.ErrScansEnded):
		if scanErr := <-scanErrCh; scanErr != nil {
			return scanErr
		}
		missing := reassembler.Missing()
		if r.ledger.Persistent() {
			return fmt.Errorf("%w: %d blocks missing, rerun with --resume to continue", err, len(missing))
		}
		return fmt.Errorf("%w: %d blocks missing", err, len(missing))
	case errors.Is(err, protocol.ErrCorruptPayload):
		return r.abort(reassembler, err)
	default:
		return err
	}
}

// abort ends a session whose payload cannot be decoded
func (r *ReceiverApp) abort(reassembler *processor.Reassembler, err error) error {
	if resetErr := reassembler.Reset(); resetErr != nil {
		log.Printf("Warning: failed to clear ledger: %v", resetErr)
	}
	return fmt.Errorf("%w; restart the transfer from the sender", err)
}
