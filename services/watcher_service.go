package services

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"docsearch/models"
)

// WatcherService keeps the index in sync with a local drop directory:
// supported files written there are ingested, removed files are deleted from
// the store. The document name is the file's base name, so overwriting a file
// replaces its chunks the same way a re-upload does.
type WatcherService struct {
	documents DocumentService
}

// NewWatcherService creates a watcher backed by the given document service.
func NewWatcherService(documents DocumentService) *WatcherService {
	return &WatcherService{documents: documents}
}

// Watch blocks on directory events until the context is cancelled.
func (s *WatcherService) Watch(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				docType, supported := models.ParseDocumentType(filepath.Ext(event.Name))
				if !supported {
					continue
				}

				// Editors often write via create-temp-then-rename, which
				// fires several events for one save. Create and Write both
				// re-ingest, and the delete-before-insert in Ingest keeps
				// that idempotent.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-ingesting...", event.Name)
					data, err := os.ReadFile(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not read file %s: %v", event.Name, err)
						continue
					}
					name := filepath.Base(event.Name)
					if _, err := s.documents.Ingest(ctx, name, docType, data); err != nil {
						log.Printf("WATCHER ERROR: Failed to ingest %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.documents.DeleteDocument(ctx, filepath.Base(event.Name)); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}
