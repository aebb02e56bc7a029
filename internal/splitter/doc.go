// Package splitter turns an uploaded video into fixed-length segments
// using ffmpeg stream copy and bundles the results into a zip archive.
// Segment boundaries are planned up front from the probed duration so
// every cut but the last runs for exactly the requested length.
package splitter
