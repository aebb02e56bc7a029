// Package retention removes expired uploads, generated segments, and
// their job records. Everything the service writes is transient; once a
// job has been idle past the configured age its artifacts are deleted.
package retention

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"reelsplit/internal/config"
	"reelsplit/internal/jobs"
	"reelsplit/internal/logging"
)

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	JobsRemoved    int
	OrphansRemoved int
}

// Sweeper deletes expired jobs and stray files left behind by crashes.
type Sweeper struct {
	cfg    *config.Config
	store  *jobs.Store
	logger *slog.Logger
}

// New constructs a Sweeper.
func New(cfg *config.Config, store *jobs.Store, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sweeper{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "retention"),
	}
}

// Sweep removes every job idle since before now minus the retention age,
// along with its files, then clears orphaned entries from the upload and
// output directories. Individual removal failures are logged and skipped
// so one stuck file does not block the rest of the pass.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport
	cutoff := now.Add(-s.cfg.RetentionMaxAge())

	expired, err := s.store.ListExpired(ctx, cutoff)
	if err != nil {
		return report, err
	}

	for _, job := range expired {
		if err := s.removeJob(ctx, job); err != nil {
			s.logger.Warn("remove expired job",
				logging.String(logging.FieldJobID, job.ID),
				logging.Error(err))
			continue
		}
		report.JobsRemoved++
	}

	live, err := s.store.List(ctx)
	if err != nil {
		return report, err
	}
	keep := make(map[string]struct{}, len(live)*2)
	for _, job := range live {
		if job.SourcePath != "" {
			keep[job.SourcePath] = struct{}{}
		}
		keep[filepath.Join(s.cfg.Paths.OutputDir, job.ID)] = struct{}{}
	}

	for _, dir := range []string{s.cfg.Paths.UploadDir, s.cfg.Paths.OutputDir} {
		report.OrphansRemoved += s.sweepDir(dir, cutoff, keep)
	}

	if report.JobsRemoved > 0 || report.OrphansRemoved > 0 {
		s.logger.Info("sweep complete",
			logging.Int("jobs_removed", report.JobsRemoved),
			logging.Int("orphans_removed", report.OrphansRemoved))
	}
	return report, nil
}

func (s *Sweeper) removeJob(ctx context.Context, job *jobs.Job) error {
	if job.SourcePath != "" {
		if err := os.Remove(job.SourcePath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	outDir := filepath.Join(s.cfg.Paths.OutputDir, job.ID)
	if err := os.RemoveAll(outDir); err != nil {
		return err
	}
	return s.store.Delete(ctx, job.ID)
}

// sweepDir deletes top-level entries older than cutoff that no live job
// references.
func (s *Sweeper) sweepDir(dir string, cutoff time.Time, keep map[string]struct{}) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read directory for sweep", logging.String("dir", dir), logging.Error(err))
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if _, ok := keep[path]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn("remove orphan", logging.String("path", path), logging.Error(err))
			continue
		}
		removed++
	}
	return removed
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.cfg.SweepInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.Sweep(ctx, now); err != nil {
				s.logger.Error("background sweep", logging.Error(err))
			}
		}
	}
}
