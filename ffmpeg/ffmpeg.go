package ffmpeg

import (
	"bytes"
	"os/exec"
	"strings"
)

// swapped out by tests so nothing actually spawns
var execCommand = exec.Command

// runs ffmpeg with the provided args and returns (stdout, stderr, error)
func Ffmpeg(args ...string) ([]byte, []byte, error) {
	ffmpeg := "ffmpeg"
	log.Infoln(ffmpeg, strings.Join(args, " "))
	cmd := execCommand(ffmpeg, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err != nil {
		log.Errorf("ffmpeg error: %v", err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}
