// Package stitch builds and runs the ffmpeg invocations that concatenate an
// ordered list of audio clips into a single MP3, or mux them under a looped
// still image into a 1080p MP4.
package stitch

import (
	"fmt"
	"os"
	"strings"

	"stitcher-site/ffmpeg"
)

// swapped out by tests so nothing actually spawns
var runFfmpeg = ffmpeg.Ffmpeg

// Result is what the UI layer sees for one export. Failures are values,
// never errors: the app stays usable after any failed encode.
type Result struct {
	Success    bool
	OutputPath string
	Error      string
}

type FitMode string

const (
	FitModeFit  FitMode = "fit"  // letterbox: preserve aspect, pad with black
	FitModeFill FitMode = "fill" // preserve aspect, crop to fill the frame
)

var bitrates = map[string]bool{
	"128k": true,
	"192k": true,
	"256k": true,
	"320k": true,
}

func ValidBitrate(bitrate string) bool {
	return bitrates[bitrate]
}

func failure(format string, args ...interface{}) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Audio concatenates clips (in the order given, exactly) into an MP3 at
// outputPath. The concat list file is removed on every exit path.
func Audio(clipPaths []string, outputPath, bitrate string) Result {
	if len(clipPaths) == 0 {
		return failure("no clips provided")
	}
	if !ValidBitrate(bitrate) {
		return failure("unsupported bitrate %q", bitrate)
	}

	listPath, err := writeConcatList(clipPaths)
	if err != nil {
		return failure("failed to create concat list: %v", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:a", "libmp3lame",
		"-b:a", bitrate,
		outputPath,
	}

	return run(args, outputPath)
}

// Video muxes the concatenated clips with a looped still image (or a black
// 1920x1080 frame when imagePath is empty) into an MP4 at outputPath.
func Video(clipPaths []string, outputPath, bitrate, imagePath string, fit FitMode) Result {
	if len(clipPaths) == 0 {
		return failure("no clips provided")
	}
	if !ValidBitrate(bitrate) {
		return failure("unsupported bitrate %q", bitrate)
	}

	listPath, err := writeConcatList(clipPaths)
	if err != nil {
		return failure("failed to create concat list: %v", err)
	}
	defer os.Remove(listPath)

	return run(videoArgs(listPath, outputPath, bitrate, imagePath, fit), outputPath)
}

// videoArgs is split out so tests can inspect the argument vector without
// spawning anything.
func videoArgs(listPath, outputPath, bitrate, imagePath string, fit FitMode) []string {
	args := []string{"-y"}

	if imagePath != "" {
		args = append(args, "-loop", "1", "-i", imagePath)
	} else {
		args = append(args, "-f", "lavfi", "-i", "color=black:s=1920x1080:r=1")
	}

	args = append(args,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	)

	// the generated black background is already 1920x1080
	if imagePath != "" {
		args = append(args, "-vf", videoFilter(fit))
	} else {
		args = append(args, "-vf", "format=yuv420p")
	}

	// stillimage tune and a low CRF: the video stream is a single frame, so
	// quality is cheap
	args = append(args,
		"-c:v", "libx264",
		"-crf", "12",
		"-preset", "slow",
		"-tune", "stillimage",
		"-c:a", "aac",
		"-b:a", bitrate,
		"-shortest",
		"-movflags", "+faststart",
		outputPath,
	)
	return args
}

// videoFilter maps the image onto the 1920x1080 canvas. yuv444p keeps
// gradients in cover art from banding.
func videoFilter(fit FitMode) string {
	switch fit {
	case FitModeFill:
		return `scale=1920:1080:force_original_aspect_ratio=increase,crop=1920:1080,format=yuv444p`
	default:
		// scale down only (never up), then center on a black canvas
		return `scale=iw*min(1\,min(1920/iw\,1080/ih)):ih*min(1\,min(1920/iw\,1080/ih)),pad=1920:1080:(ow-iw)/2:(oh-ih)/2:black,format=yuv444p`
	}
}

// writeConcatList writes one `file '<path>'` line per clip, in order, to a
// temp file for the concat demuxer. Single quotes in paths are escaped for
// ffmpeg's list syntax.
func writeConcatList(clipPaths []string) (string, error) {
	tmp, err := os.CreateTemp("", "stitcher-concat-*.txt")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	for _, path := range clipPaths {
		escaped := strings.ReplaceAll(path, "'", `'\''`)
		if _, err := fmt.Fprintf(tmp, "file '%s'\n", escaped); err != nil {
			os.Remove(tmp.Name())
			return "", err
		}
	}

	return tmp.Name(), nil
}

func run(args []string, outputPath string) Result {
	_, stderr, err := runFfmpeg(args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = fmt.Sprintf("failed to run ffmpeg: %v. Is ffmpeg installed?", err)
		} else {
			msg = "ffmpeg error: " + msg
		}
		return Result{Error: msg}
	}
	return Result{Success: true, OutputPath: outputPath}
}
