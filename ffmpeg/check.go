package ffmpeg

import "strings"

// Availability reports whether the ffmpeg binary can be spawned at all.
type Availability struct {
	Installed bool
	Version   string
	Error     string
}

// Check spawns `ffmpeg -version` and reports the result. Called once at
// startup and from the status page.
func Check() Availability {
	stdout, _, err := Ffmpeg("-version")
	if err != nil {
		return Availability{
			Installed: false,
			Error:     "ffmpeg is not installed or not in PATH: " + err.Error(),
		}
	}
	return Availability{
		Installed: true,
		Version:   versionLine(stdout),
	}
}

// first line of `ffmpeg -version` output, e.g.
// "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers"
func versionLine(stdout []byte) string {
	lines := strings.SplitN(string(stdout), "\n", 2)
	line := strings.TrimSpace(lines[0])
	if line == "" {
		return "ffmpeg installed"
	}
	return line
}
