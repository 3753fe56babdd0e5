package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates the fields of a frame. A frame starts with it, so the
// first field (the marker) is always empty.
const Delimiter = " =!= "

// Frame is the wire form of one block of an encoded payload
type Frame struct {
	Index   int    // 1-based position of the block
	Total   int    // Number of blocks in the transfer
	Content string // Slice of the encoded payload
}

// EncodeFrame renders a block as " =!= <index> =!= <total> =!= <content>"
func EncodeFrame(index, total int, content string) string {
	var sb strings.Builder
	sb.Grow(3*len(Delimiter) + len(content) + 16)
	sb.WriteString(Delimiter)
	sb.WriteString(strconv.Itoa(index))
	sb.WriteString(Delimiter)
	sb.WriteString(strconv.Itoa(total))
	sb.WriteString(Delimiter)
	sb.WriteString(content)
	return sb.String()
}

// String returns the wire form of the frame
func (f Frame) String() string {
	return EncodeFrame(f.Index, f.Total, f.Content)
}

// DecodeFrame parses scanned text into a frame. Any text that does not follow
// the wire format exactly yields an error wrapping ErrMalformedFrame.
func DecodeFrame(text string) (Frame, error) {
	fields := strings.SplitN(text, Delimiter, 4)
	if len(fields) < 4 {
		return Frame{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedFrame, len(fields))
	}
	if fields[0] != "" {
		return Frame{}, fmt.Errorf("%w: missing leading marker", ErrMalformedFrame)
	}

	index, err := parsePositive(fields[1])
	if err != nil {
		return Frame{}, fmt.Errorf("%w: index: %v", ErrMalformedFrame, err)
	}
	total, err := parsePositive(fields[2])
	if err != nil {
		return Frame{}, fmt.Errorf("%w: total: %v", ErrMalformedFrame, err)
	}
	if index > total {
		return Frame{}, fmt.Errorf("%w: index %d exceeds total %d", ErrMalformedFrame, index, total)
	}

	return Frame{Index: index, Total: total, Content: fields[3]}, nil
}

// parsePositive accepts only the canonical decimal form of a positive integer
func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("not positive: %d", n)
	}
	if strconv.Itoa(n) != s {
		return 0, fmt.Errorf("not canonical: %q", s)
	}
	return n, nil
}
