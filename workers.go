package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stitcher-site/clips"
	"stitcher-site/config"
	"stitcher-site/exports"
	"stitcher-site/stitch"
)

// swapped out by tests so no encode actually runs
var stitchAudio = stitch.Audio
var stitchVideo = stitch.Video

func ensureDirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0700)
}

func runExport(job exports.Export) {

	ordered, err := clips.List(db, job.SessionID)
	if err != nil {
		exports.SetFailed(job.ID, fmt.Sprintf("failed to load session clips: %v", err))
		return
	}
	if len(ordered) == 0 {
		// handlers reject this before queueing, but the session may have
		// been emptied while the job waited
		exports.SetFailed(job.ID, "no clips in session")
		return
	}

	paths := make([]string, 0, len(ordered))
	for _, clip := range ordered {
		paths = append(paths, clip.Path)
	}

	dstFilename := fmt.Sprintf("%s.%s", uuid.Must(uuid.NewV7()).String(), job.Format)
	dstFilepath := filepath.Join(config.GetDataDir(), dstFilename)
	if err := ensureDirFor(dstFilepath); err != nil {
		exports.SetFailed(job.ID, fmt.Sprintf("failed to create data dir: %v", err))
		return
	}

	exports.SetStatus(job.ID, exports.StatusRunning)

	var res stitch.Result
	if job.Format == string(clips.FormatMP4) {
		res = stitchVideo(paths, dstFilepath, job.Bitrate, job.ImagePath, stitch.FitMode(job.FitMode))
	} else {
		res = stitchAudio(paths, dstFilepath, job.Bitrate)
	}

	if !res.Success {
		exports.SetFailed(job.ID, res.Error)
		return
	}
	exports.SetCompleted(job.ID, dstFilename)
}

func exportPending() {
	log.Debugln("exportPending...")

	// any running jobs here got stuck or died in the middle, so reset them
	db.Model(&exports.Export{}).
		Where("status = ?", exports.StatusRunning).
		Update("status", exports.StatusPending)

	// drain pending jobs one at a time; exports are serialized here
	for {
		var job exports.Export
		err := db.Where("status = ?", exports.StatusPending).
			Order("id").First(&job).Error
		if err == gorm.ErrRecordNotFound {
			log.Debugln("no pending export jobs")
			break
		}
		if err != nil {
			log.Errorln(err)
			break
		}
		runExport(job)
	}
}

func exportWorker() {
	exportPending()
	ticker := time.NewTicker(2 * time.Second)
	for range ticker.C {
		exportPending()
	}
}
