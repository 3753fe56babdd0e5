package processor

import (
	"errors"
	"unicode/utf8"

	"qrcast/internal/protocol"
)

var ErrInvalidBlockSize = errors.New("block size must be greater than 0")

// Block is one immutable slice of an encoded payload
type Block struct {
	Index   int // 1-based
	Total   int
	Content string
}

// Frame returns the wire form of the block
func (b Block) Frame() string {
	return protocol.Frame{Index: b.Index, Total: b.Total, Content: b.Content}.String()
}

// BlockCount returns ceil(len/blockSize) where len counts characters, never
// less than 1 so that an empty payload still produces a block.
func BlockCount(encoded string, blockSize int) int {
	if blockSize <= 0 {
		return 0
	}
	n := utf8.RuneCountInString(encoded)
	return max(1, (n+blockSize-1)/blockSize)
}

// SplitBlocks cuts an encoded payload into blocks of at most blockSize
// characters. Cuts fall on rune boundaries so a non-ASCII filename is never
// split inside a character; invalid bytes count as one character each and are
// carried through unchanged.
func SplitBlocks(encoded string, blockSize int) ([]Block, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}

	contents := make([]string, 0, BlockCount(encoded, blockSize))
	start, count := 0, 0
	for i := 0; i < len(encoded); {
		_, size := utf8.DecodeRuneInString(encoded[i:])
		i += size
		count++
		if count == blockSize {
			contents = append(contents, encoded[start:i])
			start, count = i, 0
		}
	}
	if count > 0 || len(contents) == 0 {
		contents = append(contents, encoded[start:])
	}

	total := len(contents)
	blocks := make([]Block, total)
	for i, content := range contents {
		blocks[i] = Block{Index: i + 1, Total: total, Content: content}
	}
	return blocks, nil
}

// JoinBlocks concatenates block contents in index order
func JoinBlocks(blocks []Block) string {
	ordered := make([]string, len(blocks))
	for _, b := range blocks {
		if b.Index >= 1 && b.Index <= len(blocks) {
			ordered[b.Index-1] = b.Content
		}
	}

	n := 0
	for _, s := range ordered {
		n += len(s)
	}
	buf := make([]byte, 0, n)
	for _, s := range ordered {
		buf = append(buf, s...)
	}
	return string(buf)
}
