// Package ffprobe wraps the ffprobe binary for media inspection.
//
// Inspect shells out with JSON output enabled and decodes the container
// format and stream list. Helpers expose the fields the upload flow needs:
// duration, container size, and the first video stream's dimensions and
// codec.
package ffprobe
