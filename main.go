package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"

	"docsearch/controller"
	"docsearch/services"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	// UniPDF wants its license key registered before any PDF is opened.
	if key := os.Getenv("UNIDOC_LICENSE_KEY"); key != "" {
		if err := license.SetMeteredKey(key); err != nil {
			log.Printf("WARNING: Failed to set UniPDF license key: %v. PDF uploads will fail.", err)
		}
	}

	chromaURL := envOr("CHROMA_URL", "http://localhost:8000")
	collectionName := envOr("CHROMA_COLLECTION", "document_chunks")
	ollamaURL := envOr("OLLAMA_URL", "http://localhost:11434")
	embedModel := envOr("OLLAMA_EMBED_MODEL", "nomic-embed-text:v1.5")
	chunkSize := envInt("CHUNK_SIZE", services.DefaultChunkSize)
	chunkOverlap := envInt("CHUNK_OVERLAP", services.DefaultChunkOverlap)
	port := envOr("PORT", "8080")

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(chromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	embedder := services.NewOllamaEmbedder(httpClient, ollamaURL, embedModel)

	// Explicit one-time initialization: ensures the collection exists before
	// any request is served.
	store, err := services.NewChromaStore(context.Background(), chromaClient, embedder, collectionName)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize vector store: %v", err)
	}
	log.Printf("Connected to chroma at %s, collection '%s'", chromaURL, collectionName)

	chunker := services.NewChunker(chunkSize, chunkOverlap)
	documentService := services.NewDocumentService(store, chunker)
	documentController := controller.NewDocumentController(documentService)

	// Optional drop directory kept in sync with the index.
	if watchDir := os.Getenv("WATCH_DIR"); watchDir != "" {
		watcher := services.NewWatcherService(documentService)
		go watcher.Watch(context.Background(), watchDir)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		count, err := documentService.TotalChunks(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  "vector store unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Document Search API",
			"chunks":  count,
		})
	})

	router.POST("/upload", documentController.Upload)
	router.GET("/query", documentController.Query)
	router.DELETE("/delete", documentController.DeleteAll)

	log.Printf("Document search server starting on http://localhost:%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: Invalid value for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}
