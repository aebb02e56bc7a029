package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusSplitting Status = "splitting"
	StatusReady     Status = "ready"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusUploaded,
	StatusSplitting,
	StatusReady,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Job represents one upload-through-archive unit of work.
type Job struct {
	ID              string
	Filename        string
	Title           string
	Status          Status
	SourcePath      string
	ArchivePath     string
	DurationSeconds float64
	SizeBytes       int64
	Width           int
	Height          int
	Codec           string
	SplitDuration   float64
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Segment is one time-bounded, stream-copied slice of a job's source.
type Segment struct {
	JobID           string
	Seq             int
	Filename        string
	Path            string
	StartSeconds    float64
	EndSeconds      float64
	DurationSeconds float64
	SizeBytes       int64
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
}

// SetReady records a successful split.
func (j *Job) SetReady(archivePath string, splitDuration float64) {
	j.Status = StatusReady
	j.ArchivePath = archivePath
	j.SplitDuration = splitDuration
	j.ErrorMessage = ""
}
