package testsupport

import (
	"context"
	"testing"

	"reelsplit/internal/config"
	"reelsplit/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewUploadedJob inserts a job in the uploaded state for tests.
func NewUploadedJob(t testing.TB, store *jobs.Store, id, sourcePath string, duration float64) *jobs.Job {
	t.Helper()

	job := &jobs.Job{
		ID:              id,
		Filename:        "clip.mp4",
		Title:           "Clip",
		Status:          jobs.StatusUploaded,
		SourcePath:      sourcePath,
		DurationSeconds: duration,
		SizeBytes:       1024,
		Width:           1080,
		Height:          1920,
		Codec:           "h264",
	}
	if err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
