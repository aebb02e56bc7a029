package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// ExtractRequest describes one stream-copied cut.
type ExtractRequest struct {
	InputPath       string
	OutputPath      string
	StartSeconds    float64
	DurationSeconds float64
}

// Client defines segment extraction behaviour.
type Client interface {
	Extract(ctx context.Context, req ExtractRequest) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool for stream-copied cuts.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Extract cuts one segment without re-encoding. The seek happens before the
// input is opened, and -avoid_negative_ts corrects timestamps when the seek
// lands off a keyframe boundary.
func (c *CLI) Extract(ctx context.Context, req ExtractRequest) error {
	if strings.TrimSpace(req.InputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}
	if req.DurationSeconds <= 0 {
		return fmt.Errorf("segment duration must be positive, got %v", req.DurationSeconds)
	}
	if req.StartSeconds < 0 {
		return fmt.Errorf("segment start must not be negative, got %v", req.StartSeconds)
	}

	args := []string{
		"-v", "error",
		"-ss", formatSeconds(req.StartSeconds),
		"-i", req.InputPath,
		"-t", formatSeconds(req.DurationSeconds),
		"-c", "copy",
		"-avoid_negative_ts", "1",
		"-y",
		req.OutputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

var _ Client = (*CLI)(nil)
