package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"docsearch/models"
	"docsearch/services"
)

// maxSearchLimit caps how many matches a single query may request.
const maxSearchLimit = 10

// DocumentController handles the HTTP surface of the ingestion and search
// pipeline. It depends on the DocumentService for the actual work.
type DocumentController struct {
	documents services.DocumentService
}

// NewDocumentController creates a new DocumentController. Called from main.go
// to inject the service dependency.
func NewDocumentController(documents services.DocumentService) *DocumentController {
	return &DocumentController{documents: documents}
}

// Upload is the gin handler for POST /upload. It accepts a multipart file,
// derives the document type from the filename extension, and runs the
// ingestion pipeline.
func (c *DocumentController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "No file provided in the request"})
		return
	}
	if fileHeader.Filename == "" {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "File does not have a valid filename"})
		return
	}

	docType, ok := models.ParseDocumentType(filepath.Ext(fileHeader.Filename))
	if !ok {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Unsupported file format"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Could not open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Could not read uploaded file"})
		return
	}

	chunks, err := c.documents.Ingest(ctx.Request.Context(), fileHeader.Filename, docType, data)
	if err != nil {
		status, detail := classifyIngestError(err, chunks)
		ctx.JSON(status, models.ErrorResponse{Detail: detail})
		return
	}

	ctx.JSON(http.StatusOK, models.UploadResponse{
		Success: true,
		Message: fmt.Sprintf("Document '%s' processed successfully", fileHeader.Filename),
		Chunks:  chunks,
	})
}

// classifyIngestError maps pipeline error kinds onto HTTP statuses. A partial
// insert reports the true persisted count so the mismatch is visible to the
// caller.
func classifyIngestError(err error, chunks int) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		return http.StatusBadRequest, "Unsupported file format"
	case errors.Is(err, services.ErrMalformedInput):
		return http.StatusUnprocessableEntity, "File content is not valid for its declared type"
	case errors.Is(err, services.ErrInvalidEncoding):
		return http.StatusUnprocessableEntity, "File content is not valid UTF-8 text"
	case errors.Is(err, services.ErrExtraction):
		return http.StatusInternalServerError, "Failed to extract text from the document"
	case errors.Is(err, services.ErrPartialInsert):
		return http.StatusInternalServerError, fmt.Sprintf("Document only partially stored: %d chunks persisted", chunks)
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Vector store unavailable"
	default:
		return http.StatusInternalServerError, "Failed to process document"
	}
}

// Query is the gin handler for GET /query. The limit defaults to 5 and is
// clamped to 1..10.
func (c *DocumentController) Query(ctx *gin.Context) {
	var req models.SearchRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		detail := "Invalid query parameters"
		if ctx.Query("query") == "" {
			detail = "Missing required 'query' parameter"
		}
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: detail})
		return
	}
	if req.Limit < 1 {
		req.Limit = 1
	}
	if req.Limit > maxSearchLimit {
		req.Limit = maxSearchLimit
	}

	results, err := c.documents.Search(ctx.Request.Context(), req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, services.ErrStoreUnavailable) {
			ctx.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Detail: "Vector store unavailable"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Failed to run search"})
		return
	}

	ctx.JSON(http.StatusOK, models.SearchResponse{
		Results: results,
		Query:   req.Query,
	})
}

// DeleteAll is the gin handler for DELETE /delete. It drops every stored
// record and recreates the empty collection.
func (c *DocumentController) DeleteAll(ctx *gin.Context) {
	if err := c.documents.DeleteAll(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Failed to delete stored documents"})
		return
	}
	ctx.JSON(http.StatusOK, models.DeleteResponse{Message: "All documents deleted successfully"})
}
