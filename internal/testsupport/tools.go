package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"reelsplit/internal/config"
)

// StubFFprobe installs a fake ffprobe that reports the given metadata for
// any input and points the config at it.
func StubFFprobe(t testing.TB, cfg *config.Config, duration float64, width, height int, codec string) {
	t.Helper()

	payload := fmt.Sprintf(`{
  "streams": [{"index": 0, "codec_name": %q, "codec_type": "video", "width": %d, "height": %d}],
  "format": {"duration": %q, "size": "1048576"}
}`, codec, width, height, fmt.Sprintf("%v", duration))

	script := "#!/bin/sh\ncat <<'EOF'\n" + payload + "\nEOF\n"
	cfg.Tools.FFprobe = writeScript(t, "ffprobe", script)
}

// StubFFprobeFailure installs a fake ffprobe that always exits non-zero.
func StubFFprobeFailure(t testing.TB, cfg *config.Config, message string) {
	t.Helper()

	script := fmt.Sprintf("#!/bin/sh\necho %q >&2\nexit 1\n", message)
	cfg.Tools.FFprobe = writeScript(t, "ffprobe", script)
}

// StubFFmpeg installs a fake ffmpeg that writes placeholder bytes to its
// final argument and points the config at it.
func StubFFmpeg(t testing.TB, cfg *config.Config) {
	t.Helper()

	script := "#!/bin/sh\nfor last; do :; done\nprintf 'stub segment data' > \"$last\"\n"
	cfg.Tools.FFmpeg = writeScript(t, "ffmpeg", script)
}

func writeScript(t testing.TB, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s stub: %v", name, err)
	}
	return path
}
