// Package ffmpeg transcodes scratch WAV files with the ffmpeg binary before
// upload.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Options are the target encoding parameters.
type Options struct {
	Codec      string
	Channels   int
	SampleRate int
	BitRateK   int
}

// Args builds the ffmpeg argument list for converting inPath to outPath.
func Args(opts Options, inPath, outPath string) ([]string, error) {
	ffCodec, codecHasBitrate := CodecFor(opts.Codec)
	if ffCodec == "" {
		return nil, fmt.Errorf("unsupported codec: %s", opts.Codec)
	}
	channels := opts.Channels
	if channels <= 0 {
		channels = 1
	}
	sr := opts.SampleRate
	if sr <= 0 {
		sr = 16000
	}
	bitrate := opts.BitRateK
	if bitrate <= 0 {
		bitrate = 128
	}

	args := []string{"-y", "-loglevel", "error", "-i", inPath, "-ac", strconv.Itoa(channels), "-ar", strconv.Itoa(sr), "-c:a", ffCodec}
	if codecHasBitrate {
		args = append(args, "-b:a", fmt.Sprintf("%dk", bitrate))
	}
	return append(args, outPath), nil
}

// Convert runs ffmpeg to convert inPath into outPath.
func Convert(ctx context.Context, opts Options, inPath, outPath string) error {
	args, err := Args(opts, inPath, outPath)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// CodecFor maps a codec name to the ffmpeg encoder and whether it takes a
// bitrate.
func CodecFor(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "opus", "libopus":
		return "libopus", true
	case "aac":
		return "aac", true
	case "mp3":
		return "libmp3lame", true
	case "vorbis", "libvorbis":
		return "libvorbis", true
	case "flac":
		return "flac", false
	case "pcm", "pcm_s16le":
		return "pcm_s16le", false
	default:
		return "", false
	}
}
