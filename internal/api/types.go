// Package api defines the JSON wire types for the reelsplit HTTP
// service and a client for talking to a running daemon.
package api

import "time"

// ServiceInfo is returned from the root endpoint.
type ServiceInfo struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is returned from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a human-readable failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResponse reports the probed metadata of an accepted upload.
type UploadResponse struct {
	Duration float64 `json:"duration"`
	SizeMB   float64 `json:"size_mb"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec"`
	JobID    string  `json:"job_id"`
	Filename string  `json:"filename"`
}

// SplitRequest asks the service to segment an uploaded video.
type SplitRequest struct {
	JobID         string  `json:"job_id"`
	SplitDuration float64 `json:"split_duration"`
}

// ClipInfo describes one generated segment.
type ClipInfo struct {
	Number   int     `json:"number"`
	Filename string  `json:"filename"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	SizeMB   float64 `json:"size_mb"`
}

// SplitResponse reports a completed segmentation.
type SplitResponse struct {
	Success     bool       `json:"success"`
	JobID       string     `json:"job_id"`
	TotalClips  int        `json:"total_clips"`
	Clips       []ClipInfo `json:"clips"`
	ZipSizeMB   float64    `json:"zip_size_mb"`
	DownloadURL string     `json:"download_url"`
}

// JobSummary is the list representation of a job.
type JobSummary struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Duration  float64   `json:"duration"`
	SizeMB    float64   `json:"size_mb"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobDetail is the full representation of a job, including its clips
// once a split has completed.
type JobDetail struct {
	JobSummary
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	Codec         string     `json:"codec"`
	SplitDuration float64    `json:"split_duration,omitempty"`
	Error         string     `json:"error,omitempty"`
	Clips         []ClipInfo `json:"clips,omitempty"`
	DownloadURL   string     `json:"download_url,omitempty"`
}

// JobListResponse wraps a job listing.
type JobListResponse struct {
	Jobs  []JobSummary `json:"jobs"`
	Total int          `json:"total"`
}
