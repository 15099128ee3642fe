package models

// UploadResponse is returned by POST /upload after a document has been
// chunked and queued for insertion.
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

// SearchResponse is returned by GET /query. Results keep the store's
// relevance ordering; an empty slice means no matches, not an error.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
}

// DeleteResponse is returned by DELETE /delete.
type DeleteResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a human-readable failure description.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
