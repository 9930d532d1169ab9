package stitch

import (
	"errors"
	"os"
	"strings"
	"testing"
)

// spy captures every ffmpeg invocation (and the concat list content at the
// moment of the call, before the deferred cleanup runs).
type spy struct {
	calls     [][]string
	listBody  string
	listPath  string
	err       error
	stderrMsg string
}

func (s *spy) install(t *testing.T) {
	t.Helper()
	old := runFfmpeg
	runFfmpeg = func(args ...string) ([]byte, []byte, error) {
		s.calls = append(s.calls, args)
		for i, arg := range args {
			if arg == "-i" && i+1 < len(args) && strings.HasSuffix(args[i+1], ".txt") {
				s.listPath = args[i+1]
				body, err := os.ReadFile(s.listPath)
				if err != nil {
					t.Errorf("concat list unreadable during encode: %v", err)
				}
				s.listBody = string(body)
			}
		}
		return nil, []byte(s.stderrMsg), s.err
	}
	t.Cleanup(func() { runFfmpeg = old })
}

func argAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("args missing %q: %v", flag, args)
	return ""
}

func TestAudioEmptyClipsNeverSpawns(t *testing.T) {
	s := &spy{}
	s.install(t)

	res := Audio(nil, "out.mp3", "192k")
	if res.Success {
		t.Error("empty clip list succeeded")
	}
	if res.Error == "" {
		t.Error("empty clip list produced no error message")
	}
	if len(s.calls) != 0 {
		t.Error("ffmpeg was spawned for an empty clip list")
	}
}

func TestVideoEmptyClipsNeverSpawns(t *testing.T) {
	s := &spy{}
	s.install(t)

	res := Video(nil, "out.mp4", "192k", "", FitModeFit)
	if res.Success || len(s.calls) != 0 {
		t.Error("ffmpeg was spawned for an empty clip list")
	}
}

func TestBitrateWhitelist(t *testing.T) {
	for _, bitrate := range []string{"128k", "192k", "256k", "320k"} {
		if !ValidBitrate(bitrate) {
			t.Errorf("%s rejected", bitrate)
		}
	}
	for _, bitrate := range []string{"", "64k", "192", "192K", "999k"} {
		if ValidBitrate(bitrate) {
			t.Errorf("%s accepted", bitrate)
		}
	}

	s := &spy{}
	s.install(t)
	res := Audio([]string{"a.mp3"}, "out.mp3", "64k")
	if res.Success || len(s.calls) != 0 {
		t.Error("ffmpeg was spawned for an invalid bitrate")
	}
}

func TestAudioArgs(t *testing.T) {
	s := &spy{}
	s.install(t)

	res := Audio([]string{"/music/a.mp3", "/music/b.mp3"}, "/tmp/out.mp3", "320k")
	if !res.Success {
		t.Fatalf("audio stitch failed: %s", res.Error)
	}
	if res.OutputPath != "/tmp/out.mp3" {
		t.Errorf("output path = %q", res.OutputPath)
	}
	if len(s.calls) != 1 {
		t.Fatalf("ffmpeg spawned %d times", len(s.calls))
	}

	args := s.calls[0]
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-y", "-f concat", "-safe 0", "-c:a libmp3lame", "-b:a 320k",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp3" {
		t.Errorf("last arg = %q, want the output path", args[len(args)-1])
	}
}

func TestConcatListPreservesOrder(t *testing.T) {
	permutations := [][]string{
		{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3"},
		{"/m/c.mp3", "/m/a.mp3", "/m/b.mp3"},
		{"/m/b.mp3", "/m/b.mp3", "/m/a.mp3"}, // duplicates stay
	}
	for _, clips := range permutations {
		s := &spy{}
		s.install(t)

		res := Audio(clips, "out.mp3", "128k")
		if !res.Success {
			t.Fatalf("stitch failed: %s", res.Error)
		}

		var want strings.Builder
		for _, clip := range clips {
			want.WriteString("file '" + clip + "'\n")
		}
		if s.listBody != want.String() {
			t.Errorf("concat list = %q, want %q", s.listBody, want.String())
		}
	}
}

func TestConcatListEscapesQuotes(t *testing.T) {
	s := &spy{}
	s.install(t)

	res := Audio([]string{"/music/it's a clip.mp3"}, "out.mp3", "128k")
	if !res.Success {
		t.Fatalf("stitch failed: %s", res.Error)
	}
	want := `file '/music/it'\''s a clip.mp3'` + "\n"
	if s.listBody != want {
		t.Errorf("concat list = %q, want %q", s.listBody, want)
	}
}

func TestConcatListRemovedAfterRun(t *testing.T) {
	for _, encodeErr := range []error{nil, errors.New("exit status 1")} {
		s := &spy{err: encodeErr, stderrMsg: "boom"}
		s.install(t)

		Audio([]string{"/m/a.mp3"}, "out.mp3", "128k")
		if s.listPath == "" {
			t.Fatal("concat list path not captured")
		}
		if _, err := os.Stat(s.listPath); !os.IsNotExist(err) {
			t.Errorf("concat list %s not removed (encode err: %v)", s.listPath, encodeErr)
		}
	}
}

func TestAudioIndependentCalls(t *testing.T) {
	s := &spy{}
	s.install(t)

	clips := []string{"/m/a.mp3", "/m/b.mp3"}
	first := Audio(clips, "/tmp/one.mp3", "192k")
	second := Audio(clips, "/tmp/two.mp3", "192k")

	if !first.Success || !second.Success {
		t.Fatal("repeat stitch failed")
	}
	if first.OutputPath == second.OutputPath {
		t.Error("output paths collided")
	}
	if len(s.calls) != 2 {
		t.Fatalf("ffmpeg spawned %d times, want 2", len(s.calls))
	}
	if s.calls[0][len(s.calls[0])-1] == s.calls[1][len(s.calls[1])-1] {
		t.Error("both invocations share a destination")
	}
}

func TestVideoFitModePadsNotCrops(t *testing.T) {
	args := videoArgs("list.txt", "out.mp4", "192k", "/img/cover.png", FitModeFit)
	vf := argAfter(t, args, "-vf")
	if !strings.Contains(vf, "pad=1920:1080") {
		t.Errorf("fit filter does not pad: %s", vf)
	}
	if strings.Contains(vf, "crop") {
		t.Errorf("fit filter crops: %s", vf)
	}
}

func TestVideoFillModeCropsNotPads(t *testing.T) {
	args := videoArgs("list.txt", "out.mp4", "192k", "/img/cover.png", FitModeFill)
	vf := argAfter(t, args, "-vf")
	if !strings.Contains(vf, "crop=1920:1080") {
		t.Errorf("fill filter does not crop: %s", vf)
	}
	if strings.Contains(vf, "pad") {
		t.Errorf("fill filter pads: %s", vf)
	}
}

func TestVideoWithImageLoopsIt(t *testing.T) {
	args := videoArgs("list.txt", "out.mp4", "256k", "/img/cover.png", FitModeFit)
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-loop 1 -i /img/cover.png",
		"-f concat -safe 0 -i list.txt",
		"-c:v libx264", "-tune stillimage", "-c:a aac", "-b:a 256k",
		"-shortest", "-movflags +faststart",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestVideoWithoutImageUsesBlackFrame(t *testing.T) {
	args := videoArgs("list.txt", "out.mp4", "192k", "", FitModeFit)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "color=black:s=1920x1080:r=1") {
		t.Errorf("no black background source: %s", joined)
	}
	vf := argAfter(t, args, "-vf")
	if vf != "format=yuv420p" {
		t.Errorf("filter for bare black background = %q", vf)
	}
}

func TestRunMapsFailures(t *testing.T) {
	// encoder ran and failed: stderr becomes the message
	s := &spy{err: errors.New("exit status 1"), stderrMsg: "unknown encoder 'libmp3lame'"}
	s.install(t)
	res := Audio([]string{"/m/a.mp3"}, "out.mp3", "128k")
	if res.Success {
		t.Error("failed encode reported success")
	}
	if !strings.Contains(res.Error, "unknown encoder") {
		t.Errorf("error = %q", res.Error)
	}
	if res.OutputPath != "" {
		t.Errorf("failed encode carries output path %q", res.OutputPath)
	}

	// binary missing: spawn error text becomes the message
	s2 := &spy{err: errors.New(`exec: "ffmpeg": executable file not found in $PATH`)}
	s2.install(t)
	res = Audio([]string{"/m/a.mp3"}, "out.mp3", "128k")
	if res.Success || res.Error == "" {
		t.Error("missing binary did not map to a failure message")
	}
}
