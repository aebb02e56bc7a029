package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelsplit/internal/api"
)

func newFakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/":
			_ = json.NewEncoder(w).Encode(api.ServiceInfo{
				Status: "online", Service: "WhatsApp Reel Video Splitter API", Version: "1.0",
			})
		case r.URL.Path == "/health":
			_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: "healthy"})
		case r.URL.Path == "/jobs":
			jobs := []api.JobSummary{
				{ID: "job-a", Filename: "alpha.mp4", Status: "ready", Duration: 95, SizeMB: 10.5, CreatedAt: now, UpdatedAt: now},
				{ID: "job-b", Filename: "beta.mp4", Status: "failed", Duration: 40, SizeMB: 4.2, CreatedAt: now, UpdatedAt: now},
			}
			if status := r.URL.Query().Get("status"); status != "" {
				var filtered []api.JobSummary
				for _, job := range jobs {
					if job.Status == status {
						filtered = append(filtered, job)
					}
				}
				jobs = filtered
			}
			_ = json.NewEncoder(w).Encode(api.JobListResponse{Jobs: jobs, Total: len(jobs)})
		case strings.HasPrefix(r.URL.Path, "/jobs/"):
			id := strings.TrimPrefix(r.URL.Path, "/jobs/")
			if id != "job-a" {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Job not found"})
				return
			}
			_ = json.NewEncoder(w).Encode(api.JobDetail{
				JobSummary: api.JobSummary{
					ID: "job-a", Filename: "alpha.mp4", Title: "Alpha", Status: "ready",
					Duration: 95, SizeMB: 10.5, CreatedAt: now, UpdatedAt: now,
				},
				Width: 1080, Height: 1920, Codec: "h264",
				Clips: []api.ClipInfo{
					{Number: 1, Filename: "reel_01.mp4", End: 30, Duration: 30, SizeMB: 3.3},
					{Number: 2, Filename: "reel_02.mp4", Start: 30, End: 60, Duration: 30, SizeMB: 3.4},
				},
				DownloadURL: "/download/job-a",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "not found"})
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func runCLI(t *testing.T, args []string, apiAddr string) (string, error) {
	t.Helper()

	full := append([]string{"--api", apiAddr}, args...)
	cmd := newRootCommand()
	cmd.SetArgs(full)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestJobsListRendersTable(t *testing.T) {
	daemon := newFakeDaemon(t)

	out, err := runCLI(t, []string{"jobs", "list"}, daemon.URL)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "job-a")
	requireContains(t, out, "alpha.mp4")
	requireContains(t, out, "ready")
	requireContains(t, out, "job-b")
}

func TestJobsListStatusFilter(t *testing.T) {
	daemon := newFakeDaemon(t)

	out, err := runCLI(t, []string{"jobs", "list", "--status", "failed"}, daemon.URL)
	if err != nil {
		t.Fatalf("jobs list --status: %v", err)
	}
	requireContains(t, out, "job-b")
	if strings.Contains(out, "job-a") {
		t.Fatalf("expected ready job filtered out, got:\n%s", out)
	}
}

func TestJobsListJSON(t *testing.T) {
	daemon := newFakeDaemon(t)

	out, err := runCLI(t, []string{"jobs", "list", "--json"}, daemon.URL)
	if err != nil {
		t.Fatalf("jobs list --json: %v", err)
	}
	var list api.JobListResponse
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 jobs, got %d", list.Total)
	}
}

func TestShowCommand(t *testing.T) {
	daemon := newFakeDaemon(t)

	out, err := runCLI(t, []string{"show", "job-a"}, daemon.URL)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Alpha")
	requireContains(t, out, "reel_01.mp4")
	requireContains(t, out, "/download/job-a")
	requireContains(t, out, "1080x1920")
}

func TestShowUnknownJobSurfacesError(t *testing.T) {
	daemon := newFakeDaemon(t)

	_, err := runCLI(t, []string{"show", "missing"}, daemon.URL)
	if err == nil {
		t.Fatal("expected error for unknown job")
	}
	if !strings.Contains(err.Error(), "Job not found") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	daemon := newFakeDaemon(t)

	out, err := runCLI(t, []string{"status"}, daemon.URL)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Reelsplit Daemon")
	requireContains(t, out, "healthy")
	requireContains(t, out, "2 total")
}
