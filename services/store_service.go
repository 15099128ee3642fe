package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"

	"docsearch/models"
)

// insertBatchSize bounds how many records go into a single store call.
const insertBatchSize = 50

// VectorStore is the external collaborator that owns chunk records and their
// embeddings and serves nearest-neighbor queries over them.
type VectorStore interface {
	// InsertBatch persists the records of one document and returns how many
	// were actually inserted. A partial failure returns the true count along
	// with ErrPartialInsert.
	InsertBatch(ctx context.Context, records []models.DocumentRecord) (int, error)
	// DeleteByDocumentName removes every record of the named document.
	// Deleting a name with no records is a no-op.
	DeleteByDocumentName(ctx context.Context, name string) error
	// Query runs a near-text search and returns up to limit matches ordered
	// by descending relevance.
	Query(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
	// Reset drops the whole collection and recreates it empty.
	Reset(ctx context.Context) error
	// Count reports the number of records currently stored.
	Count(ctx context.Context) (int, error)
}

// ChromaStore implements VectorStore on a ChromaDB collection, delegating
// vectorization to an Embedder.
type ChromaStore struct {
	client         chromago.Client
	embedder       Embedder
	collectionName string

	mu         sync.Mutex
	collection chromago.Collection
}

// NewChromaStore connects to the named collection, creating it if absent.
// This is the one explicit initialization step; no collection setup happens
// implicitly later.
func NewChromaStore(ctx context.Context, client chromago.Client, embedder Embedder, collectionName string) (*ChromaStore, error) {
	store := &ChromaStore{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
	}
	collection, err := store.ensureCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ensure collection %q: %v", ErrStoreUnavailable, collectionName, err)
	}
	store.collection = collection
	return store, nil
}

// ensureCollection gets or creates the collection with cosine distance, so
// query distances land in [0, 2] and map cleanly onto a 0..1 relevance score.
func (s *ChromaStore) ensureCollection(ctx context.Context) (chromago.Collection, error) {
	return s.client.GetOrCreateCollection(
		ctx,
		s.collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Stores document text chunks with embeddings"),
				chromago.NewStringAttribute("hnsw:space", "cosine"),
			),
		),
	)
}

func (s *ChromaStore) col() chromago.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection
}

// InsertBatch embeds and inserts records in fixed-size batches. If a batch
// fails after earlier ones succeeded, the count of records already persisted
// is returned with ErrPartialInsert so the caller can detect the mismatch
// against the document's total chunk count.
func (s *ChromaStore) InsertBatch(ctx context.Context, records []models.DocumentRecord) (int, error) {
	collection := s.col()
	inserted := 0

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		ids := make([]chromago.DocumentID, 0, len(batch))
		texts := make([]string, 0, len(batch))
		embs := make([]embeddings.Embedding, 0, len(batch))
		metas := make([]chromago.DocumentMetadata, 0, len(batch))
		for _, record := range batch {
			vector, err := s.embedder.Embed(ctx, record.Text)
			if err != nil {
				return inserted, insertFailure(inserted, len(records), fmt.Errorf("embed chunk %d: %w", record.ChunkID, err))
			}
			ids = append(ids, chromago.DocumentID(fmt.Sprintf("%s-chunk%d", uuid.New().String(), record.ChunkID)))
			texts = append(texts, record.Text)
			embs = append(embs, embeddings.NewEmbeddingFromFloat32(vector))
			metas = append(metas, chromago.NewDocumentMetadata(
				chromago.NewStringAttribute("document_name", record.DocumentName),
				chromago.NewIntAttribute("chunk_id", int64(record.ChunkID)),
				chromago.NewStringAttribute("document_type", string(record.DocumentType)),
				chromago.NewIntAttribute("total_chunks", int64(record.TotalChunks)),
				chromago.NewStringAttribute("context_before", record.ContextBefore),
				chromago.NewStringAttribute("context_after", record.ContextAfter),
			))
		}

		err := collection.Add(ctx,
			chromago.WithIDs(ids...),
			chromago.WithTexts(texts...),
			chromago.WithEmbeddings(embs...),
			chromago.WithMetadatas(metas...),
		)
		if err != nil {
			return inserted, insertFailure(inserted, len(records), err)
		}
		inserted += len(batch)
	}

	return inserted, nil
}

// insertFailure classifies a failed insert: nothing persisted means the store
// is unreachable for this request, anything else is a partial batch.
func insertFailure(inserted, total int, cause error) error {
	if inserted == 0 {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, cause)
	}
	return fmt.Errorf("%w: inserted %d of %d records: %v", ErrPartialInsert, inserted, total, cause)
}

// DeleteByDocumentName removes all records whose document_name matches.
func (s *ChromaStore) DeleteByDocumentName(ctx context.Context, name string) error {
	where := chromago.EqString("document_name", name)
	if err := s.col().Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("%w: delete records for %q: %v", ErrStoreUnavailable, name, err)
	}
	return nil
}

// Query embeds the query text and runs a nearest-neighbor search, reshaping
// the store's response into SearchResults. Records missing context fields
// (legacy data) come back with empty strings.
func (s *ChromaStore) Query(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	results, err := s.col().Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query collection: %v", ErrStoreUnavailable, err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) == 0 {
		return []models.SearchResult{}, nil
	}

	matches := make([]models.SearchResult, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		var meta map[string]interface{}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			meta = metadataToMap(metadataGroups[0][i])
		}

		result := models.SearchResult{
			Text:          doc.ContentString(),
			DocumentName:  metaString(meta, "document_name"),
			ChunkID:       metaInt(meta, "chunk_id"),
			DocumentType:  metaString(meta, "document_type"),
			ContextBefore: metaString(meta, "context_before"),
			ContextAfter:  metaString(meta, "context_after"),
		}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			distance := float64(distanceGroups[0][i])
			result.Distance = distance
			result.RelevanceScore = relevanceFromDistance(distance)
		}
		matches = append(matches, result)
	}
	return matches, nil
}

// relevanceFromDistance maps a cosine distance in [0, 2] onto a 0..1 score
// where higher means more relevant.
func relevanceFromDistance(distance float64) float64 {
	score := 1 - distance/2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// metadataToMap converts a chroma DocumentMetadata into a plain map. The
// metadata type has no public accessor for all values, so round-trip through
// JSON like everywhere else in this codebase.
func metadataToMap(meta chromago.DocumentMetadata) map[string]interface{} {
	if meta == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		log.Printf("WARN: could not marshal record metadata: %v", err)
		return nil
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		log.Printf("WARN: could not unmarshal record metadata: %v", err)
		return nil
	}
	return metaMap
}

func metaString(meta map[string]interface{}, key string) string {
	if value, ok := meta[key].(string); ok {
		return value
	}
	return ""
}

func metaInt(meta map[string]interface{}, key string) int {
	switch value := meta[key].(type) {
	case float64:
		return int(value)
	case int64:
		return int(value)
	case int:
		return value
	default:
		return 0
	}
}

// Reset drops the collection and recreates it empty under the same name.
func (s *ChromaStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.DeleteCollection(ctx, s.collectionName); err != nil {
		return fmt.Errorf("%w: delete collection %q: %v", ErrStoreUnavailable, s.collectionName, err)
	}
	collection, err := s.ensureCollection(ctx)
	if err != nil {
		return fmt.Errorf("%w: recreate collection %q: %v", ErrStoreUnavailable, s.collectionName, err)
	}
	s.collection = collection
	return nil
}

// Count reports how many chunk records the collection currently holds.
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	count, err := s.col().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count records: %v", ErrStoreUnavailable, err)
	}
	return int(count), nil
}
