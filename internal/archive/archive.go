// Package archive bundles generated segments into a download-ready zip.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BuildDir writes a zip at zipPath containing every regular file in dir
// whose extension matches ext (without the dot). Entries are stored flat
// under their base names in lexical order. Returns the archive size in
// bytes.
func BuildDir(dir, ext, zipPath string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read segment directory: %w", err)
	}

	var names []string
	suffix := "." + strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("no %s files found in %s", suffix, dir)
	}
	sort.Strings(names)

	out, err := os.Create(zipPath)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}

	writer := zip.NewWriter(out)
	for _, name := range names {
		if err := addFile(writer, filepath.Join(dir, name), name); err != nil {
			_ = writer.Close()
			_ = out.Close()
			_ = os.Remove(zipPath)
			return 0, err
		}
	}
	if err := writer.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(zipPath)
		return 0, fmt.Errorf("finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(zipPath)
		return 0, fmt.Errorf("close archive: %w", err)
	}

	info, err := os.Stat(zipPath)
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	return info.Size(), nil
}

func addFile(writer *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open segment %s: %w", name, err)
	}
	defer src.Close()

	header := &zip.FileHeader{Name: name, Method: zip.Deflate}
	info, err := src.Stat()
	if err == nil {
		header.Modified = info.ModTime()
	}

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}
