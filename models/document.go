package models

import "strings"

// DocumentType identifies the declared format of an uploaded file.
// Dispatch happens on this type only; file content is never sniffed.
type DocumentType string

const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeDOCX DocumentType = "docx"
	DocumentTypeTXT  DocumentType = "txt"
	DocumentTypeJSON DocumentType = "json"
)

// ParseDocumentType maps a file extension (with or without the leading dot)
// to a DocumentType. The second return value is false for anything outside
// the supported set.
func ParseDocumentType(ext string) (DocumentType, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch DocumentType(ext) {
	case DocumentTypePDF, DocumentTypeDOCX, DocumentTypeTXT, DocumentTypeJSON:
		return DocumentType(ext), true
	default:
		return "", false
	}
}

// ContextualChunk is one chunk of a document's extracted text together with
// the unmodified text of its immediate neighbours. Context fields are empty
// strings at the sequence edges.
type ContextualChunk struct {
	Index         int
	Text          string
	ContextBefore string
	ContextAfter  string
}

// DocumentRecord is the unit persisted in the vector store. One uploaded
// document produces TotalChunks records sharing DocumentName and DocumentType,
// with ChunkID dense and 0-based.
type DocumentRecord struct {
	DocumentName  string       `json:"document_name"`
	DocumentType  DocumentType `json:"document_type"`
	ChunkID       int          `json:"chunk_id"`
	TotalChunks   int          `json:"total_chunks"`
	Text          string       `json:"text"`
	ContextBefore string       `json:"context_before"`
	ContextAfter  string       `json:"context_after"`
}

// SearchResult is one vector-store match, reshaped for the API. RelevanceScore
// is 0..1 with higher meaning more relevant; Distance is the raw store metric.
type SearchResult struct {
	Text           string  `json:"text"`
	DocumentName   string  `json:"document_name"`
	ChunkID        int     `json:"chunk_id"`
	DocumentType   string  `json:"document_type"`
	ContextBefore  string  `json:"context_before"`
	ContextAfter   string  `json:"context_after"`
	RelevanceScore float64 `json:"relevance_score"`
	Distance       float64 `json:"distance"`
}
