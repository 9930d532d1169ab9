package exports

import (
	"gorm.io/gorm"

	"stitcher-site/database"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Export is one queued encode of a session. Settings are snapshotted at
// submit time so later edits to the session don't change a running job.
type Export struct {
	gorm.Model
	SessionID uint
	Status    Status

	// snapshot of the session settings
	Format    string // "mp3" or "mp4"
	Bitrate   string
	FitMode   string
	ImagePath string

	OutputName string // user-chosen base name
	Filename   string // actual file in the data dir once completed
	Error      string
}

func SetStatus(id uint, status Status) error {
	db := database.Get()
	log.Debugln("export", id, "status ->", status)
	return db.Model(&Export{}).Where("id = ?", id).Update("status", status).Error
}

func SetFailed(id uint, msg string) error {
	db := database.Get()
	log.Errorln("export", id, "failed:", msg)
	return db.Model(&Export{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": StatusFailed, "error": msg}).Error
}

func SetCompleted(id uint, filename string) error {
	db := database.Get()
	log.Debugln("export", id, "completed:", filename)
	return db.Model(&Export{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": StatusCompleted, "filename": filename, "error": ""}).Error
}
