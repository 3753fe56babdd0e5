package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidErrorCorrection = errors.New("error correction level must be one of L, M, Q, H")
	ErrInvalidCameraMax       = errors.New("camera max must be greater than 0")
	ErrInvalidImageSize       = errors.New("image size must be greater than 0")
	ErrInvalidFPS             = errors.New("fps must be between 1 and 1000")
	ErrInvalidMaxFileSize     = errors.New("max file size must be greater than 0")
	ErrInvalidWarnFileSize    = errors.New("warn file size must not exceed max file size")
)

// Byte-mode capacity of the largest QR symbol at each error correction level
var levelCapacity = map[string]int{
	"L": 2953,
	"M": 2331,
	"Q": 1663,
	"H": 1273,
}

// Config holds all application configuration
type Config struct {
	QR       QRConfig       `mapstructure:"qr" json:"qr"`
	Sender   SenderConfig   `mapstructure:"sender" json:"sender"`
	Receiver ReceiverConfig `mapstructure:"receiver" json:"receiver"`
}

// QRConfig holds symbol parameters shared by both sides
type QRConfig struct {
	ErrorCorrection string `mapstructure:"error_correction" json:"error_correction"`
	CameraMax       int    `mapstructure:"camera_max" json:"camera_max"` // Largest block a phone camera reads reliably
	ImageSize       int    `mapstructure:"image_size" json:"image_size"` // PNG edge length in pixels
}

// SenderConfig holds sender-side configuration
type SenderConfig struct {
	FPS          int   `mapstructure:"fps" json:"fps"`
	MaxFileSize  int64 `mapstructure:"max_file_size" json:"max_file_size"`
	WarnFileSize int64 `mapstructure:"warn_file_size" json:"warn_file_size"`
}

// ReceiverConfig holds receiver-side configuration
type ReceiverConfig struct {
	SessionKey string `mapstructure:"session_key" json:"session_key"`
	LedgerPath string `mapstructure:"ledger_path" json:"ledger_path"` // Empty keeps the ledger in memory
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		QR: QRConfig{
			ErrorCorrection: "L",
			CameraMax:       1000,
			ImageSize:       512,
		},
		Sender: SenderConfig{
			FPS:          20,
			MaxFileSize:  5 * 1024 * 1024, // 5 MB
			WarnFileSize: 3 * 1024 * 1024, // 3 MB
		},
		Receiver: ReceiverConfig{
			SessionKey: "",
			LedgerPath: "",
		},
	}
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if _, ok := levelCapacity[strings.ToUpper(c.QR.ErrorCorrection)]; !ok {
		return fmt.Errorf("%w: got %q", ErrInvalidErrorCorrection, c.QR.ErrorCorrection)
	}
	if c.QR.CameraMax <= 0 {
		return ErrInvalidCameraMax
	}
	if c.QR.ImageSize <= 0 {
		return ErrInvalidImageSize
	}
	if c.Sender.FPS <= 0 || c.Sender.FPS > 1000 {
		return ErrInvalidFPS
	}
	if c.Sender.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}
	if c.Sender.WarnFileSize > c.Sender.MaxFileSize {
		return ErrInvalidWarnFileSize
	}
	return nil
}

// Level returns the normalized error correction level
func (c *Config) Level() string {
	return strings.ToUpper(c.QR.ErrorCorrection)
}

// frameOverhead is room left in a symbol for the frame header
const frameOverhead = 32

// BlockSize is the number of payload characters carried by one frame: the
// symbol capacity at the configured level less the frame header, clamped to
// the camera ceiling.
func (c *Config) BlockSize() int {
	return min(levelCapacity[c.Level()]-frameOverhead, c.QR.CameraMax)
}

// FrameInterval is the time each frame stays on screen
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Sender.FPS)
}
