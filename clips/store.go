package clips

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Append adds a probed clip at the end of the session's list and returns it.
func Append(db *gorm.DB, sessionID uint, path, name string, duration float64, size int64) (Clip, error) {
	var count int64
	if err := db.Model(&Clip{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return Clip{}, err
	}

	clip := Clip{
		SessionID: sessionID,
		Token:     uuid.Must(uuid.NewV7()).String(),
		Path:      path,
		Name:      name,
		Duration:  duration,
		Size:      size,
		Position:  uint(count),
	}
	if err := db.Create(&clip).Error; err != nil {
		return Clip{}, err
	}
	return clip, nil
}

// List returns the session's clips in concat order.
func List(db *gorm.DB, sessionID uint) ([]Clip, error) {
	var out []Clip
	err := db.Where("session_id = ?", sessionID).Order("position").Find(&out).Error
	return out, err
}

// Remove deletes a clip by token and re-packs the remaining positions so
// they stay dense.
func Remove(db *gorm.DB, token string) error {
	var clip Clip
	if err := db.Where("token = ?", token).First(&clip).Error; err != nil {
		return err
	}
	if err := db.Delete(&clip).Error; err != nil {
		return err
	}
	return repack(db, clip.SessionID)
}

// Move places the clip at a new 0-based index in its session's list,
// shifting the others. Out-of-range targets clamp to the ends.
func Move(db *gorm.DB, token string, to int) error {
	var clip Clip
	if err := db.Where("token = ?", token).First(&clip).Error; err != nil {
		return err
	}

	ordered, err := List(db, clip.SessionID)
	if err != nil {
		return err
	}

	if to < 0 {
		to = 0
	}
	if to > len(ordered)-1 {
		to = len(ordered) - 1
	}

	from := -1
	for i, c := range ordered {
		if c.Token == token {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("clip %s not in its own session list", token)
	}

	moved := ordered[from]
	ordered = append(ordered[:from], ordered[from+1:]...)
	ordered = append(ordered[:to], append([]Clip{moved}, ordered[to:]...)...)

	for i, c := range ordered {
		if err := db.Model(&Clip{}).Where("id = ?", c.ID).Update("position", uint(i)).Error; err != nil {
			return err
		}
	}
	return nil
}

func repack(db *gorm.DB, sessionID uint) error {
	ordered, err := List(db, sessionID)
	if err != nil {
		return err
	}
	for i, c := range ordered {
		if uint(i) == c.Position {
			continue
		}
		if err := db.Model(&Clip{}).Where("id = ?", c.ID).Update("position", uint(i)).Error; err != nil {
			return err
		}
	}
	return nil
}

// Totals returns the summed duration and size of a session's clips.
func Totals(db *gorm.DB, sessionID uint) (float64, int64, error) {
	ordered, err := List(db, sessionID)
	if err != nil {
		return 0, 0, err
	}
	var duration float64
	var size int64
	for _, c := range ordered {
		duration += c.Duration
		size += c.Size
	}
	return duration, size, nil
}

// SetImage replaces the session's background image (at most one).
func SetImage(db *gorm.DB, sessionID uint, path, name string, width, height uint) error {
	if err := RemoveImage(db, sessionID); err != nil {
		return err
	}
	image := BackgroundImage{
		SessionID: sessionID,
		Path:      path,
		Name:      name,
		Width:     width,
		Height:    height,
	}
	return db.Create(&image).Error
}

func RemoveImage(db *gorm.DB, sessionID uint) error {
	return db.Unscoped().Where("session_id = ?", sessionID).Delete(&BackgroundImage{}).Error
}

// Image returns the session's background image, or ok=false if none is set.
func Image(db *gorm.DB, sessionID uint) (BackgroundImage, bool, error) {
	var image BackgroundImage
	err := db.Where("session_id = ?", sessionID).First(&image).Error
	if err == gorm.ErrRecordNotFound {
		return BackgroundImage{}, false, nil
	}
	if err != nil {
		return BackgroundImage{}, false, err
	}
	return image, true, nil
}
