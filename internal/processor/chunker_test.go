package processor

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrcast/internal/protocol"
)

func TestSplitBlocksScenario(t *testing.T) {
	encoded, err := protocol.BuildPayload("a.txt", []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, "a.txt////AQID", encoded)

	blocks, err := SplitBlocks(encoded, 4)
	require.NoError(t, err)
	require.Len(t, blocks, 4)

	assert.Equal(t, Block{Index: 1, Total: 4, Content: "a.tx"}, blocks[0])
	assert.Equal(t, Block{Index: 2, Total: 4, Content: "t///"}, blocks[1])
	assert.Equal(t, Block{Index: 3, Total: 4, Content: "/AQI"}, blocks[2])
	assert.Equal(t, Block{Index: 4, Total: 4, Content: "D"}, blocks[3])
	assert.Equal(t, " =!= 2 =!= 4 =!= t///", blocks[1].Frame())
}

func TestSplitBlocksEmptyPayload(t *testing.T) {
	blocks, err := SplitBlocks("", 1000)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, Block{Index: 1, Total: 1, Content: ""}, blocks[0])
	assert.Equal(t, 1, BlockCount("", 1000))
}

func TestSplitBlocksExactMultiple(t *testing.T) {
	blocks, err := SplitBlocks("abcdef", 3)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "def", blocks[1].Content)
	assert.Equal(t, 2, BlockCount("abcdef", 3))
}

func TestSplitBlocksInvalidSize(t *testing.T) {
	_, err := SplitBlocks("abc", 0)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)
	assert.Zero(t, BlockCount("abc", 0))
}

func TestSplitBlocksKeepsRunesWhole(t *testing.T) {
	encoded := "ñandú☃.txt////AAAA"
	blocks, err := SplitBlocks(encoded, 2)
	require.NoError(t, err)
	assert.Len(t, blocks, BlockCount(encoded, 2))
	for _, b := range blocks {
		assert.LessOrEqual(t, len([]rune(b.Content)), 2)
	}
	assert.Equal(t, encoded, JoinBlocks(blocks))
}

func TestSplitJoinRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		data := make([]byte, rng.Intn(600))
		rng.Read(data)
		size := 1 + rng.Intn(64)

		// arbitrary bytes, including invalid UTF-8
		blocks, err := SplitBlocks(string(data), size)
		require.NoError(t, err)
		assert.Equal(t, BlockCount(string(data), size), len(blocks))
		for j, b := range blocks {
			assert.Equal(t, j+1, b.Index)
			assert.Equal(t, len(blocks), b.Total)
		}
		assert.Equal(t, string(data), JoinBlocks(blocks))
	}
}

func TestJoinBlocksOrdersByIndex(t *testing.T) {
	blocks, err := SplitBlocks(strings.Repeat("xyz", 10), 4)
	require.NoError(t, err)

	reversed := make([]Block, len(blocks))
	for i, b := range blocks {
		reversed[len(blocks)-1-i] = b
	}
	assert.Equal(t, strings.Repeat("xyz", 10), JoinBlocks(reversed))
}
