package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"qrcast/internal/config"
	"qrcast/internal/processor"
	"qrcast/internal/protocol"
	"qrcast/internal/transport"
	"qrcast/pkg/utils"
)

// SenderOptions configures the sender application behavior
type SenderOptions struct {
	FilePath  string // Required: path to file to send
	ExportDir string // Write one PNG per block here instead of cycling
}

// SenderApp implements sender application logic
type SenderApp struct {
	config      *config.Config
	fileService *processor.FileService
	cycler      *transport.Cycler
}

// NewSenderApp creates a new sender application
func NewSenderApp(cfg *config.Config, fileService *processor.FileService, display transport.Display) *SenderApp {
	return &SenderApp{
		config:      cfg,
		fileService: fileService,
		cycler:      transport.NewCycler(display, cfg.FrameInterval()),
	}
}

// Prepare loads a file and encodes it into the text that will be cycled
func (s *SenderApp) Prepare(filePath string) (string, error) {
	metadata, data, err := s.fileService.LoadFile(filePath)
	if err != nil {
		return "", err
	}

	encoded, err := protocol.BuildPayload(metadata.Name, data)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", metadata.Name, err)
	}

	log.Printf("Sending %s (%s, %s), SHA-256 %s", metadata.Name, utils.FormatFileSize(metadata.Size), metadata.MimeType, metadata.Checksum)
	return encoded, nil
}

// Run starts the sender application with the given options. Cycling only
// ends when ctx is cancelled, which is not an error.
func (s *SenderApp) Run(ctx context.Context, opts *SenderOptions) error {
	// Validate required options
	if opts.FilePath == "" {
		return fmt.Errorf("file path is required")
	}

	encoded, err := s.Prepare(opts.FilePath)
	if err != nil {
		return err
	}

	total, err := s.cycler.Load(encoded, s.config.BlockSize())
	if err != nil {
		return fmt.Errorf("failed to split payload: %w", err)
	}
	defer s.cycler.Unload()

	if opts.ExportDir != "" {
		return s.export(opts.ExportDir, s.cycler.Frames())
	}

	log.Printf("Cycling %d blocks of up to %d characters every %s, press Ctrl+C to stop",
		total, s.config.BlockSize(), s.config.FrameInterval())

	err = s.cycler.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *SenderApp) export(dir string, frames []string) error {
	level, err := transport.ParseLevel(s.config.Level())
	if err != nil {
		return err
	}

	paths, err := transport.ExportFrames(dir, frames, level, s.config.QR.ImageSize)
	if err != nil {
		return err
	}
	log.Printf("Exported %d frames to %s", len(paths), dir)
	return nil
}
