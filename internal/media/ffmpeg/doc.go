// Package ffmpeg invokes the ffmpeg binary for timestamp-accurate,
// stream-copied segment extraction. No re-encoding happens here; every cut
// is a byte copy of the source streams.
package ffmpeg
