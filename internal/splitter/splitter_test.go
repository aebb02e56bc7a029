package splitter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reelsplit/internal/config"
	"reelsplit/internal/jobs"
	"reelsplit/internal/media/ffmpeg"
	"reelsplit/internal/services"
)

type fakeClient struct {
	requests []ffmpeg.ExtractRequest
	failSeq  int
}

func (f *fakeClient) Extract(_ context.Context, req ffmpeg.ExtractRequest) error {
	f.requests = append(f.requests, req)
	if f.failSeq > 0 && len(f.requests) == f.failSeq {
		return errors.New("ffmpeg exploded")
	}
	return os.WriteFile(req.OutputPath, []byte("segment data"), 0o644)
}

func newTestEnv(t *testing.T) (*config.Config, *jobs.Store) {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.OutputDir = filepath.Join(base, "outputs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	store, err := jobs.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return &cfg, store
}

func createUploadedJob(t *testing.T, cfg *config.Config, store *jobs.Store, id string, duration float64) *jobs.Job {
	t.Helper()

	sourcePath := filepath.Join(cfg.Paths.UploadDir, id+".mp4")
	if err := os.WriteFile(sourcePath, []byte("source video"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	job := &jobs.Job{
		ID:              id,
		Filename:        "clip.mp4",
		Title:           "Clip",
		Status:          jobs.StatusUploaded,
		SourcePath:      sourcePath,
		DurationSeconds: duration,
		SizeBytes:       12,
		Width:           1080,
		Height:          1920,
		Codec:           "h264",
	}
	if err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestSplitProducesSegmentsAndArchive(t *testing.T) {
	cfg, store := newTestEnv(t)
	job := createUploadedJob(t, cfg, store, "split-ok", 95)

	client := &fakeClient{}
	s := New(cfg, store, client, nil)

	result, err := s.Split(context.Background(), job.ID, 30)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(result.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(result.Segments))
	}
	if result.ArchiveSizeBytes <= 0 {
		t.Fatalf("expected positive archive size, got %d", result.ArchiveSizeBytes)
	}

	if len(client.requests) != 4 {
		t.Fatalf("expected 4 extract calls, got %d", len(client.requests))
	}
	first := client.requests[0]
	if first.StartSeconds != 0 || first.DurationSeconds != 30 {
		t.Fatalf("unexpected first request: %+v", first)
	}
	last := client.requests[3]
	if last.StartSeconds != 90 || last.DurationSeconds != 5 {
		t.Fatalf("unexpected last request: %+v", last)
	}
	if filepath.Base(first.OutputPath) != "reel_01.mp4" {
		t.Fatalf("unexpected first segment name %q", first.OutputPath)
	}

	loaded, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded.Status != jobs.StatusReady {
		t.Fatalf("expected status ready, got %q", loaded.Status)
	}
	if loaded.SplitDuration != 30 {
		t.Fatalf("expected split duration 30, got %v", loaded.SplitDuration)
	}
	if _, err := os.Stat(loaded.ArchivePath); err != nil {
		t.Fatalf("expected archive on disk: %v", err)
	}

	persisted, err := store.SegmentsByJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(persisted) != 4 {
		t.Fatalf("expected 4 persisted segments, got %d", len(persisted))
	}
}

func TestSplitFailureMarksJobFailed(t *testing.T) {
	cfg, store := newTestEnv(t)
	job := createUploadedJob(t, cfg, store, "split-fail", 95)

	client := &fakeClient{failSeq: 2}
	s := New(cfg, store, client, nil)

	_, err := s.Split(context.Background(), job.ID, 30)
	if err == nil {
		t.Fatal("expected split to fail")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if len(client.requests) != 2 {
		t.Fatalf("expected extraction to stop after failure, got %d calls", len(client.requests))
	}

	loaded, getErr := store.GetByID(context.Background(), job.ID)
	if getErr != nil {
		t.Fatalf("get job: %v", getErr)
	}
	if loaded.Status != jobs.StatusFailed {
		t.Fatalf("expected status failed, got %q", loaded.Status)
	}
	if loaded.ErrorMessage == "" {
		t.Fatal("expected error message to be recorded")
	}
}

func TestSplitUnknownJob(t *testing.T) {
	cfg, store := newTestEnv(t)

	s := New(cfg, store, &fakeClient{}, nil)
	_, err := s.Split(context.Background(), "missing", 30)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSplitMissingSourceFile(t *testing.T) {
	cfg, store := newTestEnv(t)
	job := createUploadedJob(t, cfg, store, "split-gone", 60)
	if err := os.Remove(job.SourcePath); err != nil {
		t.Fatalf("remove source: %v", err)
	}

	s := New(cfg, store, &fakeClient{}, nil)
	_, err := s.Split(context.Background(), job.ID, 30)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSplitRejectsConcurrentClaim(t *testing.T) {
	cfg, store := newTestEnv(t)
	job := createUploadedJob(t, cfg, store, "split-busy", 60)

	claimed, err := store.BeginSplit(context.Background(), job.ID)
	if err != nil || !claimed {
		t.Fatalf("prime claim: claimed=%v err=%v", claimed, err)
	}

	s := New(cfg, store, &fakeClient{}, nil)
	_, err = s.Split(context.Background(), job.ID, 30)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSplitRejectsInvalidDuration(t *testing.T) {
	cfg, store := newTestEnv(t)
	job := createUploadedJob(t, cfg, store, "split-bad", 60)

	s := New(cfg, store, &fakeClient{}, nil)
	for _, duration := range []float64{0, -5} {
		if _, err := s.Split(context.Background(), job.ID, duration); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("duration %v: expected validation error, got %v", duration, err)
		}
	}
}

func TestSplitReplacesPreviousOutput(t *testing.T) {
	cfg, store := newTestEnv(t)
	job := createUploadedJob(t, cfg, store, "split-redo", 60)

	s := New(cfg, store, &fakeClient{}, nil)
	if _, err := s.Split(context.Background(), job.ID, 30); err != nil {
		t.Fatalf("first split: %v", err)
	}

	// Reset the claim so the job can be re-split at a new duration.
	loaded, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	loaded.Status = jobs.StatusReady
	if err := store.Update(context.Background(), loaded); err != nil {
		t.Fatalf("update job: %v", err)
	}

	result, err := s.Split(context.Background(), job.ID, 20)
	if err != nil {
		t.Fatalf("second split: %v", err)
	}
	if len(result.Segments) != 3 {
		t.Fatalf("expected 3 segments after re-split, got %d", len(result.Segments))
	}

	outDir := filepath.Join(cfg.Paths.OutputDir, job.ID)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	var mp4s int
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".mp4" {
			mp4s++
		}
	}
	if mp4s != 3 {
		t.Fatalf("expected stale segments removed, found %d mp4 files", mp4s)
	}
}
