package probe

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"stitcher-site/ffmpeg"
)

// swapped out by tests so nothing actually spawns
var runFfprobe = ffmpeg.Ffprobe

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".wma":  true,
	".opus": true,
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// AudioInfo is the result of probing one audio file. A probe failure is
// reported here, never as an error to the caller.
type AudioInfo struct {
	Duration float64
	Size     int64
	Valid    bool
	Error    string
}

type ImageInfo struct {
	Width  uint
	Height uint
	Valid  bool
	Error  string
}

func SupportedAudio(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

func SupportedImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Audio checks the extension, stats the file, and asks ffprobe for the
// container duration. Size comes from the filesystem, not ffprobe.
func Audio(path string) AudioInfo {
	if !SupportedAudio(path) {
		return AudioInfo{Error: fmt.Sprintf("unsupported audio format %q", filepath.Ext(path))}
	}

	fi, err := os.Stat(path)
	if err != nil {
		return AudioInfo{Error: "file does not exist"}
	}
	size := fi.Size()

	stdout, stderr, err := runFfprobe(
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		return AudioInfo{Size: size, Error: probeError(stderr, err)}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(stdout)), 64)
	if err != nil || duration <= 0 {
		return AudioInfo{Size: size, Error: "could not parse audio duration"}
	}

	return AudioInfo{Duration: duration, Size: size, Valid: true}
}

// Image checks the extension and asks ffprobe for the pixel dimensions of
// the first video stream (stills count as one video stream).
func Image(path string) ImageInfo {
	if !SupportedImage(path) {
		return ImageInfo{Error: fmt.Sprintf("unsupported image format %q", filepath.Ext(path))}
	}

	if _, err := os.Stat(path); err != nil {
		return ImageInfo{Error: "file does not exist"}
	}

	stdout, stderr, err := runFfprobe(
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path)
	if err != nil {
		return ImageInfo{Error: probeError(stderr, err)}
	}

	parts := strings.Split(strings.TrimSpace(string(stdout)), "x")
	if len(parts) != 2 {
		return ImageInfo{Error: "could not parse image dimensions"}
	}
	width, _ := strconv.ParseUint(parts[0], 10, 32)
	height, _ := strconv.ParseUint(parts[1], 10, 32)
	if width == 0 || height == 0 {
		return ImageInfo{Error: "could not parse image dimensions"}
	}

	return ImageInfo{Width: uint(width), Height: uint(height), Valid: true}
}

func probeError(stderr []byte, err error) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		msg = err.Error()
	}
	return "ffprobe error: " + msg
}
