package ffmpeg

import (
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	Init(logrus.New())
	m.Run()
}

func TestVersionLine(t *testing.T) {
	cases := []struct {
		stdout string
		want   string
	}{
		{"ffmpeg version 6.1.1 Copyright\nbuilt with gcc\n", "ffmpeg version 6.1.1 Copyright"},
		{"", "ffmpeg installed"},
		{"\n", "ffmpeg installed"},
	}
	for _, c := range cases {
		if got := versionLine([]byte(c.stdout)); got != c.want {
			t.Errorf("versionLine(%q) = %q, want %q", c.stdout, got, c.want)
		}
	}
}

func TestCheckMissingBinary(t *testing.T) {
	old := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command("/nonexistent/ffmpeg")
	}
	defer func() { execCommand = old }()

	avail := Check()
	if avail.Installed {
		t.Error("Check() reported installed for a missing binary")
	}
	if avail.Error == "" {
		t.Error("Check() returned empty error for a missing binary")
	}
}
