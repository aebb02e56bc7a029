package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsplit/internal/api"
	"reelsplit/internal/fileutil"
	"reelsplit/internal/jobs"
	"reelsplit/internal/logging"
	"reelsplit/internal/media/ffprobe"
	"reelsplit/internal/services"
	"reelsplit/internal/splitter"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.ServiceInfo{
		Status:  "online",
		Service: ServiceName,
		Version: ServiceVersion,
		Endpoints: map[string]string{
			"POST /upload":           "Upload and get video info",
			"POST /split":            "Split video into reels",
			"GET /download/<job_id>": "Download zip file",
			"GET /jobs":              "List jobs",
			"GET /health":            "Health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	// Reclaim space from expired jobs before accepting new data.
	if s.sweeper != nil {
		if _, err := s.sweeper.Sweep(ctx, time.Now()); err != nil {
			s.logger.Warn("pre-upload sweep", logging.Error(err))
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	file, header, err := r.FormFile("video")
	if err != nil {
		if isMaxBytesError(err) {
			s.writeError(w, http.StatusRequestEntityTooLarge, s.uploadLimitMessage())
			return
		}
		s.writeError(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		s.writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !s.cfg.ExtensionAllowed(header.Filename) {
		s.writeError(w, http.StatusBadRequest,
			"Invalid file type. Allowed: "+strings.Join(s.cfg.Server.AllowedExtensions, ", "))
		return
	}

	jobID := uuid.NewString()
	sanitized := fileutil.SanitizeFilename(header.Filename)
	sourcePath := filepath.Join(s.cfg.Paths.UploadDir, jobID+"_"+sanitized)

	written, err := fileutil.SaveStream(sourcePath, file)
	if err != nil {
		if isMaxBytesError(err) {
			s.writeError(w, http.StatusRequestEntityTooLarge, s.uploadLimitMessage())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to process video: "+err.Error())
		return
	}

	probe, err := ffprobe.Inspect(ctx, s.cfg.FFprobeBinary(), sourcePath)
	if err != nil {
		s.rejectUpload(w, sourcePath, err)
		return
	}
	duration, err := probe.DurationSeconds()
	if err != nil {
		s.rejectUpload(w, sourcePath, err)
		return
	}
	stream, ok := probe.FirstVideoStream()
	if !ok {
		s.rejectUpload(w, sourcePath, errors.New("no video stream found"))
		return
	}

	sizeBytes := probe.SizeBytes()
	if sizeBytes == 0 {
		sizeBytes = written
	}

	job := &jobs.Job{
		ID:              jobID,
		Filename:        sanitized,
		Title:           fileutil.DisplayTitle(sanitized),
		Status:          jobs.StatusUploaded,
		SourcePath:      sourcePath,
		DurationSeconds: duration,
		SizeBytes:       sizeBytes,
		Width:           stream.Width,
		Height:          stream.Height,
		Codec:           stream.CodecName,
	}
	if err := s.store.Create(ctx, job); err != nil {
		s.rejectUpload(w, sourcePath, err)
		return
	}

	s.logger.Info("upload accepted",
		logging.String(logging.FieldJobID, jobID),
		logging.String("filename", sanitized),
		logging.Float64("duration", duration),
		logging.Int64("size_bytes", sizeBytes))

	s.writeJSON(w, http.StatusOK, api.UploadResponse{
		Duration: duration,
		SizeMB:   fileutil.SizeMB(sizeBytes),
		Width:    stream.Width,
		Height:   stream.Height,
		Codec:    stream.CodecName,
		JobID:    jobID,
		Filename: sanitized,
	})
}

// rejectUpload removes the saved file before reporting a probe failure.
func (s *Server) rejectUpload(w http.ResponseWriter, sourcePath string, cause error) {
	_ = os.Remove(sourcePath)
	s.writeError(w, http.StatusInternalServerError, "Failed to process video: "+cause.Error())
}

func (s *Server) uploadLimitMessage() string {
	return fmt.Sprintf("File too large. Limit is %d MiB", s.cfg.Server.MaxUploadMiB)
}

func isMaxBytesError(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	// The multipart reader flattens the limit error into its message.
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		s.writeError(w, http.StatusBadRequest, "job_id required")
		return
	}
	splitDuration := req.SplitDuration
	if splitDuration == 0 {
		splitDuration = s.cfg.Split.DefaultDuration
	}

	ctx := services.WithJobID(r.Context(), req.JobID)
	result, err := s.splitter.Split(ctx, req.JobID, splitDuration)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "Video not found. Please upload again.")
		case errors.Is(err, services.ErrConflict):
			s.writeError(w, http.StatusConflict, "Split already in progress for this job")
		case errors.Is(err, services.ErrValidation):
			s.writeError(w, http.StatusBadRequest, "split_duration must be a positive number of seconds")
		default:
			s.writeError(w, http.StatusInternalServerError, "Failed to split video: "+err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, api.SplitResponse{
		Success:     true,
		JobID:       result.Job.ID,
		TotalClips:  len(result.Segments),
		Clips:       clipsFromSegments(result.Segments),
		ZipSizeMB:   fileutil.SizeMB(result.ArchiveSizeBytes),
		DownloadURL: "/download/" + result.Job.ID,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/download/")
	if jobID == "" || strings.Contains(jobID, "/") {
		s.writeError(w, http.StatusNotFound, "File not found or expired")
		return
	}

	job, err := s.store.GetByID(r.Context(), jobID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil || job.ArchivePath == "" {
		s.writeError(w, http.StatusNotFound, "File not found or expired")
		return
	}
	if _, err := os.Stat(job.ArchivePath); err != nil {
		s.writeError(w, http.StatusNotFound, "File not found or expired")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+splitter.ArchiveName+`"`)
	http.ServeFile(w, r, job.ArchivePath)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var statuses []jobs.Status
	for _, value := range r.URL.Query()["status"] {
		status, ok := jobs.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status "+value)
			return
		}
		statuses = append(statuses, status)
	}

	list, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]api.JobSummary, 0, len(list))
	for _, job := range list {
		summaries = append(summaries, summarizeJob(job))
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: summaries, Total: len(summaries)})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		s.writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	job, err := s.store.GetByID(r.Context(), jobID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	detail := api.JobDetail{
		JobSummary:    summarizeJob(job),
		Width:         job.Width,
		Height:        job.Height,
		Codec:         job.Codec,
		SplitDuration: job.SplitDuration,
		Error:         job.ErrorMessage,
	}
	if job.Status == jobs.StatusReady {
		segments, err := s.store.SegmentsByJob(r.Context(), job.ID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		detail.Clips = clipsFromSegments(segments)
		detail.DownloadURL = "/download/" + job.ID
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func summarizeJob(job *jobs.Job) api.JobSummary {
	return api.JobSummary{
		ID:        job.ID,
		Filename:  job.Filename,
		Title:     job.Title,
		Status:    string(job.Status),
		Duration:  job.DurationSeconds,
		SizeMB:    fileutil.SizeMB(job.SizeBytes),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func clipsFromSegments(segments []jobs.Segment) []api.ClipInfo {
	clips := make([]api.ClipInfo, 0, len(segments))
	for _, seg := range segments {
		clips = append(clips, api.ClipInfo{
			Number:   seg.Seq,
			Filename: seg.Filename,
			Start:    seg.StartSeconds,
			End:      seg.EndSeconds,
			Duration: seg.DurationSeconds,
			SizeMB:   fileutil.SizeMB(seg.SizeBytes),
		})
	}
	return clips
}
