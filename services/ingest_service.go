package services

import (
	"context"
	"fmt"
	"log"

	"docsearch/models"
)

// DocumentService defines the ingestion and query operations the HTTP layer
// drives.
type DocumentService interface {
	// Ingest runs the full pipeline for one uploaded document and returns
	// the number of chunks queued for insertion. Zero is a valid result for
	// a document with no extractable text.
	Ingest(ctx context.Context, name string, docType models.DocumentType, data []byte) (int, error)
	// Search forwards a near-text query to the vector store and returns the
	// matches in the store's relevance order.
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
	// DeleteDocument removes every stored chunk of the named document.
	DeleteDocument(ctx context.Context, name string) error
	// DeleteAll drops all stored records and recreates the empty collection.
	DeleteAll(ctx context.Context) error
	// TotalChunks counts the chunk records currently stored.
	TotalChunks(ctx context.Context) (int, error)
}

// documentServiceImpl holds the collaborators the pipeline needs.
type documentServiceImpl struct {
	store   VectorStore
	chunker *Chunker
}

// NewDocumentService creates the document service used by the controller and
// the directory watcher.
func NewDocumentService(store VectorStore, chunker *Chunker) DocumentService {
	return &documentServiceImpl{
		store:   store,
		chunker: chunker,
	}
}

// Ingest replaces any prior chunks stored under name, then runs
// extract -> chunk -> link context -> build records -> batch insert.
//
// The delete is issued before extraction, so a document that later fails to
// extract ends up with zero stored records instead of its previous ones.
// That matches the upload semantics this service has always had; reordering
// to extract-first would trade it for serving stale chunks on a bad upload.
func (s *documentServiceImpl) Ingest(ctx context.Context, name string, docType models.DocumentType, data []byte) (int, error) {
	log.Printf("SERVICE: Ingesting document '%s' (%s, %d bytes)", name, docType, len(data))

	if err := s.store.DeleteByDocumentName(ctx, name); err != nil {
		return 0, fmt.Errorf("delete previous chunks of %q: %w", name, err)
	}

	text, err := ExtractText(data, docType)
	if err != nil {
		return 0, fmt.Errorf("extract %q: %w", name, err)
	}

	chunks, err := s.chunker.Split(text)
	if err != nil {
		return 0, fmt.Errorf("chunk %q: %w", name, err)
	}
	if len(chunks) == 0 {
		log.Printf("SERVICE: Document '%s' contained no extractable text", name)
		return 0, nil
	}

	records := BuildRecords(name, docType, LinkContext(chunks))

	inserted, err := s.store.InsertBatch(ctx, records)
	if err != nil {
		return inserted, fmt.Errorf("insert chunks of %q: %w", name, err)
	}

	log.Printf("SERVICE: Stored %d chunks for document '%s'", inserted, name)
	return inserted, nil
}

// Search passes the query through to the store. Ordering is whatever the
// store returns (descending relevance); no re-sorting happens here.
func (s *documentServiceImpl) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	log.Printf("SERVICE: Searching for '%s' (limit %d)", query, limit)
	if limit <= 0 {
		limit = 5
	}

	results, err := s.store.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	log.Printf("SERVICE: Retrieved %d matches", len(results))
	return results, nil
}

// DeleteDocument implements DocumentService. Deleting a name with no stored
// records is a no-op.
func (s *documentServiceImpl) DeleteDocument(ctx context.Context, name string) error {
	log.Printf("SERVICE: Deleting all chunks of document '%s'", name)
	return s.store.DeleteByDocumentName(ctx, name)
}

// DeleteAll implements DocumentService.
func (s *documentServiceImpl) DeleteAll(ctx context.Context) error {
	log.Printf("SERVICE: Deleting all stored documents")
	return s.store.Reset(ctx)
}

// TotalChunks implements DocumentService.
func (s *documentServiceImpl) TotalChunks(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
