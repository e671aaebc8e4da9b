package processor

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkLimit is the character budget per plain-text chunk.
const DefaultChunkLimit = 500

// chunkLines splits content into chunks on line boundaries. Lines accumulate
// greedily; the buffer is flushed once adding the next line would push it
// past limit characters. A line longer than the limit forms a chunk on its
// own. Blank buffers are dropped without consuming a chunk ID, so IDs stay
// contiguous from 0. Sizes count runes, not bytes.
func chunkLines(content, source string, limit int) []Chunk {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}

	lines := strings.Split(content, "\n")
	var chunks []Chunk
	var current strings.Builder
	currentLen := 0 // runes, newlines included
	chunkID := 0

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, Chunk{
				ChunkID: chunkID,
				Content: text,
				Metadata: map[string]any{
					"chunk_index": chunkID,
					"source":      source,
				},
			})
			chunkID++
		}
		current.Reset()
		currentLen = 0
	}

	for _, line := range lines {
		lineLen := utf8.RuneCountInString(line)
		if currentLen+lineLen > limit {
			flush()
		}
		current.WriteString(line)
		current.WriteByte('\n')
		currentLen += lineLen + 1
	}
	flush()

	return chunks
}
