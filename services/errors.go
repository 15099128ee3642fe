package services

import "errors"

// Error kinds surfaced by the ingestion and query pipeline. Callers match
// with errors.Is; the underlying cause is carried in the wrapped message.
var (
	// ErrUnsupportedFormat means the declared file type is not pdf, docx,
	// txt or json.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMalformedInput means the file body failed structural validation
	// (e.g. a .json upload that is not valid JSON).
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidEncoding means text bytes could not be decoded as UTF-8.
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrExtraction means an external parser failed on the file content.
	ErrExtraction = errors.New("text extraction failed")

	// ErrStoreUnavailable means the vector store could not be reached or
	// rejected the connection.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrPartialInsert means some but not all chunks of a document were
	// persisted. The count returned alongside it is the true number of
	// records inserted.
	ErrPartialInsert = errors.New("partial batch insert")
)
