package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/models"
)

func TestLinkContext_Empty(t *testing.T) {
	assert.Empty(t, LinkContext(nil))
	assert.Empty(t, LinkContext([]string{}))
}

func TestLinkContext_SingleChunk(t *testing.T) {
	linked := LinkContext([]string{"only chunk"})

	require.Len(t, linked, 1)
	assert.Equal(t, 0, linked[0].Index)
	assert.Equal(t, "only chunk", linked[0].Text)
	assert.Equal(t, "", linked[0].ContextBefore)
	assert.Equal(t, "", linked[0].ContextAfter)
}

func TestLinkContext_NeighborsUnmodified(t *testing.T) {
	chunks := []string{"alpha", "bravo", "charlie", "delta"}

	linked := LinkContext(chunks)
	require.Len(t, linked, len(chunks))

	for i, chunk := range linked {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, chunks[i], chunk.Text)
		if i > 0 {
			assert.Equal(t, chunks[i-1], chunk.ContextBefore, "chunk %d", i)
		} else {
			assert.Equal(t, "", chunk.ContextBefore)
		}
		if i < len(chunks)-1 {
			assert.Equal(t, chunks[i+1], chunk.ContextAfter, "chunk %d", i)
		} else {
			assert.Equal(t, "", chunk.ContextAfter)
		}
	}
}

func TestBuildRecords(t *testing.T) {
	linked := LinkContext([]string{"alpha", "bravo", "charlie"})

	records := BuildRecords("notes.txt", models.DocumentTypeTXT, linked)
	require.Len(t, records, 3)

	for i, record := range records {
		assert.Equal(t, "notes.txt", record.DocumentName)
		assert.Equal(t, models.DocumentTypeTXT, record.DocumentType)
		assert.Equal(t, i, record.ChunkID)
		assert.Equal(t, 3, record.TotalChunks)
		assert.Equal(t, linked[i].Text, record.Text)
		assert.Equal(t, linked[i].ContextBefore, record.ContextBefore)
		assert.Equal(t, linked[i].ContextAfter, record.ContextAfter)
	}
}

func TestBuildRecords_Empty(t *testing.T) {
	records := BuildRecords("empty.txt", models.DocumentTypeTXT, nil)
	assert.Empty(t, records)
}
