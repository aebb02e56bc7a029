package splitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reelsplit/internal/archive"
	"reelsplit/internal/config"
	"reelsplit/internal/jobs"
	"reelsplit/internal/logging"
	"reelsplit/internal/media/ffmpeg"
	"reelsplit/internal/services"
)

// ArchiveName is the fixed name of the zip served for download.
const ArchiveName = "whatsapp_reels.zip"

// Result reports the outcome of a completed split.
type Result struct {
	Job              *jobs.Job
	Segments         []jobs.Segment
	ArchiveSizeBytes int64
}

// Splitter cuts an uploaded video into fixed-length segments and bundles
// them into a zip archive.
type Splitter struct {
	cfg    *config.Config
	store  *jobs.Store
	client ffmpeg.Client
	logger *slog.Logger
}

// New constructs a Splitter.
func New(cfg *config.Config, store *jobs.Store, client ffmpeg.Client, logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Splitter{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logging.NewComponentLogger(logger, "splitter"),
	}
}

// Split claims the job, extracts every segment via stream copy, archives
// the results, and marks the job ready. A segment failure marks the job
// failed and aborts the remaining cuts.
func (s *Splitter) Split(ctx context.Context, jobID string, splitDuration float64) (*Result, error) {
	if splitDuration <= 0 {
		return nil, services.Wrap(services.ErrValidation, "splitter", "split",
			fmt.Sprintf("split duration must be positive, got %v", splitDuration), nil)
	}

	job, err := s.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "splitter", "split", "load job", err)
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "splitter", "split", "job not found", nil)
	}
	if _, err := os.Stat(job.SourcePath); err != nil {
		return nil, services.Wrap(services.ErrNotFound, "splitter", "split", "source video missing", err)
	}

	claimed, err := s.store.BeginSplit(ctx, jobID)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "splitter", "split", "claim job", err)
	}
	if !claimed {
		return nil, services.Wrap(services.ErrConflict, "splitter", "split", "job is already being split", nil)
	}
	job.Status = jobs.StatusSplitting

	specs := Plan(job.DurationSeconds, splitDuration)
	if len(specs) == 0 {
		return nil, s.fail(ctx, job, errors.New("no segments planned for video"))
	}

	splitLog := s.logger.With(logging.String(logging.FieldJobID, job.ID))
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		splitLog = splitLog.With(logging.String(logging.FieldCorrelationID, requestID))
	}
	splitLog.Info("starting split",
		logging.Float64("split_duration", splitDuration),
		logging.Int("segments", len(specs)))

	outDir := filepath.Join(s.cfg.Paths.OutputDir, job.ID)
	if err := os.RemoveAll(outDir); err != nil {
		return nil, s.fail(ctx, job, fmt.Errorf("clear output directory: %w", err))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, s.fail(ctx, job, fmt.Errorf("create output directory: %w", err))
	}

	ext := s.cfg.Split.SegmentExtension
	segments := make([]jobs.Segment, 0, len(specs))
	for _, spec := range specs {
		name := fmt.Sprintf("reel_%02d.%s", spec.Seq, ext)
		outputPath := filepath.Join(outDir, name)
		req := ffmpeg.ExtractRequest{
			InputPath:       job.SourcePath,
			OutputPath:      outputPath,
			StartSeconds:    spec.StartSeconds,
			DurationSeconds: spec.DurationSeconds,
		}
		if err := s.client.Extract(ctx, req); err != nil {
			return nil, s.fail(ctx, job, fmt.Errorf("extract segment %d: %w", spec.Seq, err))
		}

		var size int64
		if info, statErr := os.Stat(outputPath); statErr == nil {
			size = info.Size()
		}
		segments = append(segments, jobs.Segment{
			JobID:           job.ID,
			Seq:             spec.Seq,
			Filename:        name,
			Path:            outputPath,
			StartSeconds:    spec.StartSeconds,
			EndSeconds:      spec.EndSeconds,
			DurationSeconds: spec.DurationSeconds,
			SizeBytes:       size,
		})
	}

	archivePath := filepath.Join(outDir, ArchiveName)
	archiveSize, err := archive.BuildDir(outDir, ext, archivePath)
	if err != nil {
		return nil, s.fail(ctx, job, fmt.Errorf("build archive: %w", err))
	}

	if err := s.store.ReplaceSegments(ctx, job.ID, segments); err != nil {
		return nil, s.fail(ctx, job, fmt.Errorf("persist segments: %w", err))
	}

	job.SetReady(archivePath, splitDuration)
	if err := s.store.Update(ctx, job); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "splitter", "split", "update job", err)
	}

	splitLog.Info("split complete",
		logging.Int("segments", len(segments)),
		logging.Int64("archive_bytes", archiveSize))

	return &Result{Job: job, Segments: segments, ArchiveSizeBytes: archiveSize}, nil
}

// fail records the failure on the job before surfacing the error. The
// returned error is tagged as an external tool failure so handlers map it
// to a server error.
func (s *Splitter) fail(ctx context.Context, job *jobs.Job, cause error) error {
	s.logger.Error("split failed",
		logging.String(logging.FieldJobID, job.ID),
		logging.Error(cause))

	job.SetFailed(cause.Error())
	if updateErr := s.store.Update(ctx, job); updateErr != nil {
		s.logger.Error("record split failure",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(updateErr))
	}
	return services.Wrap(services.ErrExternalTool, "splitter", "split", "", cause)
}
