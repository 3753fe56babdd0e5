package transport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"

	"qrcast/internal/protocol"
)

// Display renders frames as scannable symbols
type Display interface {
	Show(frame string) error
}

// ParseLevel maps an L/M/Q/H error correction level to a recovery level
func ParseLevel(level string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(level) {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown error correction level %q", level)
	}
}

// TerminalDisplay draws each frame in place on a terminal with half-block
// characters, followed by a caption naming the block.
type TerminalDisplay struct {
	out   io.Writer
	level qrcode.RecoveryLevel
}

// NewTerminalDisplay creates a display writing to out
func NewTerminalDisplay(out io.Writer, level qrcode.RecoveryLevel) *TerminalDisplay {
	return &TerminalDisplay{out: out, level: level}
}

func (d *TerminalDisplay) Show(frame string) error {
	q, err := qrcode.New(frame, d.level)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	// Home the cursor and clear the screen so the symbol redraws in place
	_, err = fmt.Fprintf(d.out, "\033[H\033[2J%s%s\n", q.ToSmallString(false), caption(frame))
	return err
}

// PNGDisplay keeps a single PNG file updated with the current frame, for an
// image viewer that reloads on change. The file is replaced atomically.
type PNGDisplay struct {
	path  string
	level qrcode.RecoveryLevel
	size  int
}

// NewPNGDisplay creates a display writing size x size images to path
func NewPNGDisplay(path string, level qrcode.RecoveryLevel, size int) *PNGDisplay {
	return &PNGDisplay{path: path, level: level, size: size}
}

func (d *PNGDisplay) Show(frame string) error {
	png, err := qrcode.Encode(frame, d.level, d.size)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, png, 0644); err != nil {
		return fmt.Errorf("failed to write frame image: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("failed to replace frame image: %w", err)
	}
	return nil
}

// ExportFrames writes every frame once as frame-NNNN.png under dir and
// returns the paths written, in block order.
func ExportFrames(dir string, frames []string, level qrcode.RecoveryLevel, size int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := make([]string, 0, len(frames))
	for i, frame := range frames {
		path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", i+1))
		if err := qrcode.WriteFile(frame, level, size, path); err != nil {
			return paths, fmt.Errorf("failed to export block %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func caption(frame string) string {
	f, err := protocol.DecodeFrame(frame)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("block %d of %d", f.Index, f.Total)
}
