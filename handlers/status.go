package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"golang.org/x/sys/unix"

	"stitcher-site/config"
	"stitcher-site/ffmpeg"
)

// getFreeSpace returns the free space in bytes for the filesystem containing the given directory
func getFreeSpace(dir string) (uint64, error) {
	var stat unix.Statfs_t
	err := unix.Statfs(dir, &stat)
	if err != nil {
		return 0, fmt.Errorf("error getting filesystem stats: %v", err)
	}

	freeSpace := stat.Bavail * uint64(stat.Bsize)
	return freeSpace, nil
}

// getDirectorySize calculates the total size of a directory in bytes
func getDirectorySize(dir string) (int64, error) {
	var size int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error walking directory: %v", err)
	}
	return size, nil
}

func StatusGet(c echo.Context) error {

	avail := ffmpeg.Check()
	if !avail.Installed {
		log.Errorln(avail.Error)
	}

	free, err := getFreeSpace(config.GetDataDir())
	if err != nil {
		log.Errorln(err)
	}
	used, err := getDirectorySize(config.GetDataDir())
	if err != nil {
		log.Errorln(err)
	}

	freeMiB := float64(free) / 1024 / 1024
	usedMiB := float64(used) / 1024 / 1024

	return c.Render(http.StatusOK, "status.html", map[string]interface{}{
		"installed": avail.Installed,
		"ffmpeg":    avail.Version,
		"error":     avail.Error,
		"free":      fmt.Sprintf("%.2f", freeMiB),
		"used":      fmt.Sprintf("%.2f", usedMiB),
		"Footer":    MakeFooter(),
	})
}
