package services

import "docsearch/models"

// LinkContext walks a document's chunk sequence and attaches each chunk's
// immediate neighbours as context. The context fields are the unmodified text
// of the adjacent chunks; the first and last chunk get empty strings on the
// missing side.
func LinkContext(chunks []string) []models.ContextualChunk {
	linked := make([]models.ContextualChunk, len(chunks))
	for i, text := range chunks {
		chunk := models.ContextualChunk{Index: i, Text: text}
		if i > 0 {
			chunk.ContextBefore = chunks[i-1]
		}
		if i < len(chunks)-1 {
			chunk.ContextAfter = chunks[i+1]
		}
		linked[i] = chunk
	}
	return linked
}

// BuildRecords maps a document's contextual chunks onto the flat records the
// vector store persists. All records share the document name and type, and
// TotalChunks equals the sequence length on every record.
func BuildRecords(name string, docType models.DocumentType, chunks []models.ContextualChunk) []models.DocumentRecord {
	records := make([]models.DocumentRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = models.DocumentRecord{
			DocumentName:  name,
			DocumentType:  docType,
			ChunkID:       chunk.Index,
			TotalChunks:   len(chunks),
			Text:          chunk.Text,
			ContextBefore: chunk.ContextBefore,
			ContextAfter:  chunk.ContextAfter,
		}
	}
	return records
}
