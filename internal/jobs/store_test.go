package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"reelsplit/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.OutputDir = filepath.Join(base, "outputs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func sampleJob(id string) *Job {
	return &Job{
		ID:              id,
		Filename:        "holiday_clip.mp4",
		Title:           "Holiday Clip",
		Status:          StatusUploaded,
		SourcePath:      "/tmp/uploads/" + id + ".mp4",
		DurationSeconds: 95,
		SizeBytes:       1234567,
		Width:           1080,
		Height:          1920,
		Codec:           "h264",
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := sampleJob("job-1")
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set on create")
	}

	loaded, err := store.GetByID(ctx, "job-1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected job, got nil")
	}
	if loaded.Filename != job.Filename {
		t.Fatalf("expected filename %q, got %q", job.Filename, loaded.Filename)
	}
	if loaded.Status != StatusUploaded {
		t.Fatalf("expected status %q, got %q", StatusUploaded, loaded.Status)
	}
	if loaded.DurationSeconds != 95 {
		t.Fatalf("expected duration 95, got %v", loaded.DurationSeconds)
	}
	if loaded.Width != 1080 || loaded.Height != 1920 {
		t.Fatalf("unexpected dimensions %dx%d", loaded.Width, loaded.Height)
	}
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	job, err := store.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get missing job: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job, got %+v", job)
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := sampleJob("job-2")
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	before := job.UpdatedAt
	time.Sleep(5 * time.Millisecond)

	job.SetReady("/tmp/outputs/job-2/whatsapp_reels.zip", 30)
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update job: %v", err)
	}

	loaded, err := store.GetByID(ctx, "job-2")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded.Status != StatusReady {
		t.Fatalf("expected status %q, got %q", StatusReady, loaded.Status)
	}
	if loaded.ArchivePath != "/tmp/outputs/job-2/whatsapp_reels.zip" {
		t.Fatalf("unexpected archive path %q", loaded.ArchivePath)
	}
	if loaded.SplitDuration != 30 {
		t.Fatalf("expected split duration 30, got %v", loaded.SplitDuration)
	}
	if !loaded.UpdatedAt.After(before) {
		t.Fatal("expected updated_at to advance")
	}
}

func TestStoreBeginSplitGuard(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := sampleJob("job-3")
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	claimed, err := store.BeginSplit(ctx, "job-3")
	if err != nil {
		t.Fatalf("begin split: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = store.BeginSplit(ctx, "job-3")
	if err != nil {
		t.Fatalf("begin split again: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to be rejected while splitting")
	}

	loaded, err := store.GetByID(ctx, "job-3")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded.Status != StatusSplitting {
		t.Fatalf("expected status %q, got %q", StatusSplitting, loaded.Status)
	}
}

func TestStoreBeginSplitMissingJob(t *testing.T) {
	store := newTestStore(t)

	claimed, err := store.BeginSplit(context.Background(), "nope")
	if err != nil {
		t.Fatalf("begin split: %v", err)
	}
	if claimed {
		t.Fatal("expected claim on missing job to fail")
	}
}

func TestStoreReplaceSegments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := sampleJob("job-4")
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	first := []Segment{
		{JobID: "job-4", Seq: 1, Filename: "reel_01.mp4", Path: "/tmp/outputs/job-4/reel_01.mp4", StartSeconds: 0, EndSeconds: 30, DurationSeconds: 30, SizeBytes: 100},
	}
	if err := store.ReplaceSegments(ctx, "job-4", first); err != nil {
		t.Fatalf("replace segments: %v", err)
	}

	second := []Segment{
		{JobID: "job-4", Seq: 1, Filename: "reel_01.mp4", Path: "/tmp/outputs/job-4/reel_01.mp4", StartSeconds: 0, EndSeconds: 45, DurationSeconds: 45, SizeBytes: 150},
		{JobID: "job-4", Seq: 2, Filename: "reel_02.mp4", Path: "/tmp/outputs/job-4/reel_02.mp4", StartSeconds: 45, EndSeconds: 95, DurationSeconds: 50, SizeBytes: 160},
	}
	if err := store.ReplaceSegments(ctx, "job-4", second); err != nil {
		t.Fatalf("replace segments again: %v", err)
	}

	segments, err := store.SegmentsByJob(ctx, "job-4")
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Seq != 1 || segments[1].Seq != 2 {
		t.Fatalf("expected segments ordered by seq, got %d then %d", segments[0].Seq, segments[1].Seq)
	}
	if segments[0].EndSeconds != 45 {
		t.Fatalf("expected replacement to overwrite old rows, got end %v", segments[0].EndSeconds)
	}
}

func TestStoreDeleteCascadesSegments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := sampleJob("job-5")
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	segments := []Segment{
		{JobID: "job-5", Seq: 1, Filename: "reel_01.mp4", Path: "/tmp/outputs/job-5/reel_01.mp4", EndSeconds: 30, DurationSeconds: 30},
	}
	if err := store.ReplaceSegments(ctx, "job-5", segments); err != nil {
		t.Fatalf("replace segments: %v", err)
	}

	if err := store.Delete(ctx, "job-5"); err != nil {
		t.Fatalf("delete job: %v", err)
	}

	loaded, err := store.GetByID(ctx, "job-5")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected job to be gone")
	}

	remaining, err := store.SegmentsByJob(ctx, "job-5")
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected segments removed with job, got %d", len(remaining))
	}
}

func TestStoreListFiltersByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, status := range []Status{StatusUploaded, StatusReady, StatusFailed} {
		job := sampleJob("job-list-" + string(status))
		job.Status = status
		if err := store.Create(ctx, job); err != nil {
			t.Fatalf("create job %d: %v", i, err)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(all))
	}

	ready, err := store.List(ctx, StatusReady)
	if err != nil {
		t.Fatalf("list ready: %v", err)
	}
	if len(ready) != 1 || ready[0].Status != StatusReady {
		t.Fatalf("expected a single ready job, got %+v", ready)
	}
}

func TestStoreListExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := sampleJob("job-old")
	if err := store.Create(ctx, old); err != nil {
		t.Fatalf("create old job: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(10 * time.Millisecond)

	fresh := sampleJob("job-fresh")
	if err := store.Create(ctx, fresh); err != nil {
		t.Fatalf("create fresh job: %v", err)
	}

	expired, err := store.ListExpired(ctx, cutoff)
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired job, got %d", len(expired))
	}
	if expired[0].ID != "job-old" {
		t.Fatalf("expected job-old, got %q", expired[0].ID)
	}
}

func TestStoreStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		job := sampleJob("stats-" + id)
		if err := store.Create(ctx, job); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}
	failed := sampleJob("stats-failed")
	failed.Status = StatusFailed
	if err := store.Create(ctx, failed); err != nil {
		t.Fatalf("create failed job: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[StatusUploaded] != 2 {
		t.Fatalf("expected 2 uploaded jobs, got %d", stats[StatusUploaded])
	}
	if stats[StatusFailed] != 1 {
		t.Fatalf("expected 1 failed job, got %d", stats[StatusFailed])
	}
}

func TestStoreCheckHealth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, sampleJob("health-1")); err != nil {
		t.Fatalf("create job: %v", err)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("check health: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("unexpected health report: %+v", health)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalJobs != 1 {
		t.Fatalf("expected 1 job, got %d", health.TotalJobs)
	}
}
