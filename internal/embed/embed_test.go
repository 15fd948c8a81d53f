package embed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	chunks := ChunkText("a short post", 8000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short post", chunks[0])
}

func TestChunkText_SplitsOnWordBoundaries(t *testing.T) {
	text := strings.Repeat("word ", 100)
	chunks := ChunkText(strings.TrimSpace(text), 50)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50)
		assert.False(t, strings.HasPrefix(chunk, " "))
		assert.False(t, strings.HasSuffix(chunk, " "))
	}

	// No words lost.
	rejoined := strings.Join(chunks, " ")
	assert.Equal(t, strings.TrimSpace(text), rejoined)
}

func TestChunkText_SingleOversizeWord(t *testing.T) {
	word := strings.Repeat("x", 100)
	chunks := ChunkText(word+" tail", 50)
	require.NotEmpty(t, chunks)
	assert.Equal(t, word, chunks[0])
}
