package fileutil

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SanitizeFilename reduces an untrusted upload filename to a safe basename.
// Path separators and control characters are stripped, runs of unsafe
// characters collapse to single underscores, and the extension is preserved
// in lowercase. An empty result falls back to "upload".
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var cleaned strings.Builder
	prevUnderscore := false
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '.':
			cleaned.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				cleaned.WriteByte('_')
				prevUnderscore = true
			}
		}
	}

	result := strings.Trim(cleaned.String(), "._")
	if result == "" {
		result = "upload"
	}
	return result + ext
}

// DisplayTitle derives a human-readable title from a filename: the extension
// is dropped, separator runs become spaces, and words are title-cased.
func DisplayTitle(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var cleaned strings.Builder
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteByte(' ')
				prevSpace = true
			}
		}
	}

	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled"
	}
	return cases.Title(language.Und).String(title)
}

// SaveStream writes r to path, creating parent directories as needed, and
// returns the number of bytes written. The destination is removed on error.
func SaveStream(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create upload directory: %w", err)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return 0, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return written, nil
}

// SizeMB converts a byte count to megabytes rounded to two decimals,
// matching the precision the API reports.
func SizeMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1<<20)*100) / 100
}
