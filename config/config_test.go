package config

import "testing"

func TestGetDataDir(t *testing.T) {
	t.Setenv("STITCHER_SITE_DATA_DIR", "/tmp/clips")
	if got := GetDataDir(); got != "/tmp/clips" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/clips")
	}
}

func TestGetConfigDirFollowsDataDir(t *testing.T) {
	t.Setenv("STITCHER_SITE_DATA_DIR", "/srv/stitcher")
	if got := GetConfigDir(); got != "/srv/stitcher/config" {
		t.Errorf("GetConfigDir() = %q, want %q", got, "/srv/stitcher/config")
	}

	t.Setenv("STITCHER_SITE_CONFIG_DIR", "/etc/stitcher")
	if got := GetConfigDir(); got != "/etc/stitcher" {
		t.Errorf("GetConfigDir() = %q, want %q", got, "/etc/stitcher")
	}
}

func TestGetSecure(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"on", true},
		{"1", true},
		{"TRUE", true},
		{"yes", true},
		{"off", false},
		{"0", false},
		{"", false},
	}
	for _, c := range cases {
		t.Setenv("STITCHER_SITE_SECURE", c.value)
		if got := GetSecure(); got != c.want {
			t.Errorf("GetSecure() with %q = %v, want %v", c.value, got, c.want)
		}
	}
}

func TestGetAdminInitialPassword(t *testing.T) {
	t.Setenv("STITCHER_SITE_ADMIN_INITIAL_PASSWORD", "hunter2")
	got, err := GetAdminInitialPassword()
	if err != nil {
		t.Fatal(err)
	}
	if got != "hunter2" {
		t.Errorf("GetAdminInitialPassword() = %q", got)
	}
}
