package transport

import (
	"bufio"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
)

// maxScanLength bounds a single line of scanner output
const maxScanLength = 1024 * 1024

// Scanner delivers the decoded text of each successful scan. Scan returns
// when its source is exhausted or ctx is done; it never closes out.
type Scanner interface {
	Scan(ctx context.Context, out chan<- string) error
}

// LineScanner reads decoded texts, one per line, from an external decoder
// such as `zbarcam --raw`.
type LineScanner struct {
	r io.Reader
}

func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{r: r}
}

func (s *LineScanner) Scan(ctx context.Context, out chan<- string) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanLength)

	for scanner.Scan() {
		// Frames begin with a space, so only the line terminator is trimmed
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if text == "" {
			continue
		}

		select {
		case out <- text:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read scans: %w", err)
	}
	return nil
}

// ImageScanner decodes QR symbols from the image files of a directory, in
// name order. Images without a readable symbol are skipped like failed
// camera scans.
type ImageScanner struct {
	dir string
}

func NewImageScanner(dir string) *ImageScanner {
	return &ImageScanner{dir: dir}
}

func (s *ImageScanner) Scan(ctx context.Context, out chan<- string) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif":
			paths = append(paths, filepath.Join(s.dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	reader := zxingqr.NewQRCodeReader()
	for _, path := range paths {
		text, err := decodeImage(reader, path)
		if err != nil {
			log.Printf("No symbol read from %s: %v", filepath.Base(path), err)
			continue
		}

		select {
		case out <- text:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func decodeImage(reader gozxing.Reader, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to binarize image: %w", err)
	}

	result, err := reader.Decode(bmp, nil)
	if err != nil {
		return "", err
	}
	return result.GetText(), nil
}
