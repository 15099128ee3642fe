package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/models"
)

// ingestCall records one Ingest invocation seen by the recording service.
type ingestCall struct {
	name    string
	docType models.DocumentType
}

// recordingDocService is a DocumentService that reports pipeline calls over
// channels so tests can wait on filesystem events.
type recordingDocService struct {
	ingested chan ingestCall
	deleted  chan string
}

func newRecordingDocService() *recordingDocService {
	return &recordingDocService{
		ingested: make(chan ingestCall, 16),
		deleted:  make(chan string, 16),
	}
}

func (s *recordingDocService) Ingest(_ context.Context, name string, docType models.DocumentType, _ []byte) (int, error) {
	s.ingested <- ingestCall{name: name, docType: docType}
	return 1, nil
}

func (s *recordingDocService) Search(_ context.Context, _ string, _ int) ([]models.SearchResult, error) {
	return []models.SearchResult{}, nil
}

func (s *recordingDocService) DeleteDocument(_ context.Context, name string) error {
	s.deleted <- name
	return nil
}

func (s *recordingDocService) DeleteAll(_ context.Context) error { return nil }

func (s *recordingDocService) TotalChunks(_ context.Context) (int, error) { return 0, nil }

// startWatcher runs Watch against dir and gives the watcher a moment to
// register the directory before the test writes into it.
func startWatcher(t *testing.T, service DocumentService, dir string) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	watcher := NewWatcherService(service)
	go watcher.Watch(ctx, dir)
	time.Sleep(200 * time.Millisecond)
	return cancel
}

func waitForIngest(t *testing.T, service *recordingDocService) ingestCall {
	t.Helper()

	select {
	case call := <-service.ingested:
		return call
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an ingest call")
		return ingestCall{}
	}
}

func TestWatch_IngestsWrittenFile(t *testing.T) {
	dir := t.TempDir()
	service := newRecordingDocService()
	cancel := startWatcher(t, service, dir)
	defer cancel()

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello from the drop directory"), 0o644))

	call := waitForIngest(t, service)
	assert.Equal(t, "note.txt", call.name)
	assert.Equal(t, models.DocumentTypeTXT, call.docType)
}

func TestWatch_RemovedFileDeletedFromIndex(t *testing.T) {
	dir := t.TempDir()
	service := newRecordingDocService()
	cancel := startWatcher(t, service, dir)
	defer cancel()

	path := filepath.Join(dir, "doomed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))
	waitForIngest(t, service)

	require.NoError(t, os.Remove(path))

	select {
	case name := <-service.deleted:
		assert.Equal(t, "doomed.json", name)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a delete call")
	}
}

func TestWatch_SkipsUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	service := newRecordingDocService()
	cancel := startWatcher(t, service, dir)
	defer cancel()

	// The .md write lands first; the watcher must ignore it, so the first
	// ingest call observed is for the .txt file written afterwards.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("# not supported"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "picked-up.txt"), []byte("supported"), 0o644))

	call := waitForIngest(t, service)
	assert.Equal(t, "picked-up.txt", call.name)
}
