package clips

import "gorm.io/gorm"

type Format string

const (
	FormatMP3 Format = "mp3" // audio-only concatenation
	FormatMP4 Format = "mp4" // audio under a looped still image
)

// Session is one stitching workspace: an ordered clip list plus the export
// settings chosen for it.
type Session struct {
	gorm.Model
	UserID  uint
	Name    string // output base name
	Bitrate string // one of 128k/192k/256k/320k
	Format  Format
	FitMode string // "fit" or "fill", only meaningful for mp4
}

// Clip is one validated audio file in a session. Immutable after probing
// except for its Position.
type Clip struct {
	gorm.Model
	SessionID uint
	Token     string `gorm:"uniqueIndex"`
	Path      string
	Name      string
	Duration  float64 // seconds, from ffprobe
	Size      int64   // bytes, from the filesystem
	Position  uint    // 0-based, dense; list order == concat order
}

// BackgroundImage is the at-most-one still image of an mp4 session.
// Replacing it discards the previous row.
type BackgroundImage struct {
	gorm.Model
	SessionID uint `gorm:"uniqueIndex"`
	Path      string
	Name      string
	Width     uint
	Height    uint
}
