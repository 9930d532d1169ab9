package main

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"stitcher-site/clips"
	"stitcher-site/config"
	"stitcher-site/exports"
	"stitcher-site/probe"
	"stitcher-site/stitch"
	"stitcher-site/users"
)

// set once at startup from ffmpeg.Check; gates the export controls
var ffmpegInstalled bool

func homeHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "home.html", nil)
}

func loginHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", nil)
}

func loginPostHandler(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := users.Authenticate(db, username, password)
	if err != nil {
		return c.String(http.StatusUnauthorized, "Invalid credentials")
	}

	session, err := store.Get(c.Request(), "session")
	if err != nil {
		return c.String(http.StatusInternalServerError, "Unable to retrieve session")
	}
	session.Values["user_id"] = user.ID
	err = session.Save(c.Request(), c.Response().Writer)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Unable to save session")
	}

	return c.Redirect(http.StatusSeeOther, "/sessions")
}

func logoutHandler(c echo.Context) error {
	session, _ := store.Get(c.Request(), "session")
	delete(session.Values, "user_id")
	session.Save(c.Request(), c.Response().Writer)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// looks up the session by the :id param and checks it belongs to the
// logged-in user
func userSession(c echo.Context) (clips.Session, error) {
	userID := c.Get("user_id").(uint)
	id, _ := strconv.Atoi(c.Param("id"))

	var session clips.Session
	if err := db.First(&session, id).Error; err != nil {
		return clips.Session{}, err
	}
	if session.UserID != userID {
		return clips.Session{}, fmt.Errorf("session %d does not belong to user %d", id, userID)
	}
	return session, nil
}

func sessionURL(id uint, errMsg string) string {
	u := fmt.Sprintf("/session/%d", id)
	if errMsg != "" {
		u += "?error=" + url.QueryEscape(errMsg)
	}
	return u
}

func sessionsHandler(c echo.Context) error {
	userID := c.Get("user_id").(uint)
	var mixes []clips.Session
	db.Where("user_id = ?", userID).Find(&mixes)
	return c.Render(http.StatusOK, "sessions.html", map[string]interface{}{
		"sessions": mixes,
	})
}

func sessionCreateHandler(c echo.Context) error {
	userID := c.Get("user_id").(uint)
	name := c.FormValue("name")
	if name == "" {
		name = "stitched"
	}

	session := clips.Session{
		UserID:  userID,
		Name:    name,
		Bitrate: "192k",
		Format:  clips.FormatMP3,
		FitMode: string(stitch.FitModeFit),
	}
	if err := db.Create(&session).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Error creating session")
	}
	return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, ""))
}

type ClipView struct {
	clips.Clip
	HumanDuration string
	HumanSize     string
}

type ExportView struct {
	exports.Export
	Ready bool
}

func sessionHandler(c echo.Context) error {
	session, err := userSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}

	ordered, err := clips.List(db, session.ID)
	if err != nil {
		return err
	}
	var clipViews []ClipView
	for _, clip := range ordered {
		clipViews = append(clipViews, ClipView{
			Clip:          clip,
			HumanDuration: humanLength(clip.Duration),
			HumanSize:     humanSize(clip.Size),
		})
	}

	totalDuration, totalSize, err := clips.Totals(db, session.ID)
	if err != nil {
		return err
	}

	image, hasImage, err := clips.Image(db, session.ID)
	if err != nil {
		return err
	}

	var jobs []exports.Export
	db.Where("session_id = ?", session.ID).Order("id desc").Find(&jobs)
	var exportViews []ExportView
	for _, job := range jobs {
		exportViews = append(exportViews, ExportView{
			Export: job,
			Ready:  job.Status == exports.StatusCompleted,
		})
	}

	return c.Render(http.StatusOK, "session.html", map[string]interface{}{
		"session":       session,
		"format":        string(session.Format),
		"clips":         clipViews,
		"totalDuration": humanLength(totalDuration),
		"totalSize":     humanSize(totalSize),
		"image":         image,
		"hasImage":      hasImage,
		"exports":       exportViews,
		"canExport":     ffmpegInstalled,
		"error":         c.QueryParam("error"),
	})
}

func sessionDeleteHandler(c echo.Context) error {
	session, err := userSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}

	db.Unscoped().Where("session_id = ?", session.ID).Delete(&clips.Clip{})
	db.Unscoped().Where("session_id = ?", session.ID).Delete(&clips.BackgroundImage{})
	db.Delete(&session)

	return c.Redirect(http.StatusSeeOther, "/sessions")
}

func addClipHandler(c echo.Context) error {
	session, err := userSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}

	path := c.FormValue("path")
	info := probe.Audio(path)
	if !info.Valid {
		// a rejected file never touches the session list
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, info.Error))
	}

	_, err = clips.Append(db, session.ID, path, filepath.Base(path), info.Duration, info.Size)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, "failed to add clip"))
	}
	return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, ""))
}

// finds the clip by token and checks its session belongs to the user
func userClip(c echo.Context) (clips.Clip, error) {
	userID := c.Get("user_id").(uint)
	token := c.Param("token")

	var clip clips.Clip
	if err := db.Where("token = ?", token).First(&clip).Error; err != nil {
		return clips.Clip{}, err
	}
	var session clips.Session
	if err := db.First(&session, clip.SessionID).Error; err != nil {
		return clips.Clip{}, err
	}
	if session.UserID != userID {
		return clips.Clip{}, fmt.Errorf("clip %s does not belong to user %d", token, userID)
	}
	return clip, nil
}

func clipDeleteHandler(c echo.Context) error {
	clip, err := userClip(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}
	if err := clips.Remove(db, clip.Token); err != nil {
		log.Errorln(err)
	}
	return c.Redirect(http.StatusSeeOther, sessionURL(clip.SessionID, ""))
}

func clipMoveHandler(c echo.Context) error {
	clip, err := userClip(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}

	to, err := strconv.Atoi(c.FormValue("to"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, sessionURL(clip.SessionID, "bad target position"))
	}
	if err := clips.Move(db, clip.Token, to); err != nil {
		log.Errorln(err)
	}
	return c.Redirect(http.StatusSeeOther, sessionURL(clip.SessionID, ""))
}

func imagePostHandler(c echo.Context) error {
	session, err := userSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}

	path := c.FormValue("path")
	info := probe.Image(path)
	if !info.Valid {
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, info.Error))
	}

	err = clips.SetImage(db, session.ID, path, filepath.Base(path), info.Width, info.Height)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, "failed to set image"))
	}
	return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, ""))
}

func imageDeleteHandler(c echo.Context) error {
	session, err := userSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}
	if err := clips.RemoveImage(db, session.ID); err != nil {
		log.Errorln(err)
	}
	return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, ""))
}

func settingsHandler(c echo.Context) error {
	session, err := userSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}

	if name := c.FormValue("name"); name != "" {
		session.Name = name
	}

	bitrate := c.FormValue("bitrate")
	if !stitch.ValidBitrate(bitrate) {
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, fmt.Sprintf("unsupported bitrate %q", bitrate)))
	}
	session.Bitrate = bitrate

	switch format := clips.Format(c.FormValue("format")); format {
	case clips.FormatMP3, clips.FormatMP4:
		session.Format = format
	default:
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, "unsupported output format"))
	}

	switch fit := stitch.FitMode(c.FormValue("fit_mode")); fit {
	case stitch.FitModeFit, stitch.FitModeFill:
		session.FitMode = string(fit)
	default:
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, "unsupported fit mode"))
	}

	db.Save(&session)
	return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, ""))
}

func exportPostHandler(c echo.Context) error {
	session, err := userSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}

	var count int64
	db.Model(&clips.Clip{}).Where("session_id = ?", session.ID).Count(&count)
	if count == 0 {
		// rejected before any job exists, let alone an encoder spawn
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, "no clips to export"))
	}

	job := exports.Export{
		SessionID:  session.ID,
		Status:     exports.StatusPending,
		Format:     string(session.Format),
		Bitrate:    session.Bitrate,
		FitMode:    session.FitMode,
		OutputName: session.Name,
	}
	if session.Format == clips.FormatMP4 {
		if image, ok, _ := clips.Image(db, session.ID); ok {
			job.ImagePath = image.Path
		}
	}

	if err := db.Create(&job).Error; err != nil {
		return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, "failed to queue export"))
	}
	return c.Redirect(http.StatusSeeOther, sessionURL(session.ID, ""))
}

func exportStatusHandler(c echo.Context) error {
	userID := c.Get("user_id").(uint)
	id, _ := strconv.Atoi(c.Param("id"))

	var job exports.Export
	if err := db.First(&job, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no such export"})
	}
	var session clips.Session
	if err := db.First(&session, job.SessionID).Error; err != nil || session.UserID != userID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no such export"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": job.Status,
		"error":  job.Error,
	})
}

func exportDownloadHandler(c echo.Context) error {
	userID := c.Get("user_id").(uint)
	id, _ := strconv.Atoi(c.Param("id"))

	var job exports.Export
	if err := db.First(&job, id).Error; err != nil {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}
	var session clips.Session
	if err := db.First(&session, job.SessionID).Error; err != nil || session.UserID != userID {
		return c.Redirect(http.StatusSeeOther, "/sessions")
	}
	if job.Status != exports.StatusCompleted {
		return c.Redirect(http.StatusSeeOther, sessionURL(job.SessionID, "export is not finished"))
	}

	tempURL, err := CreateTempURL(filepath.Join(config.GetDataDir(), job.Filename))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, sessionURL(job.SessionID, "failed to create download link"))
	}
	return c.Redirect(http.StatusSeeOther, "/temp/"+tempURL.Token)
}

func tempHandler(c echo.Context) error {
	token := c.Param("token")

	var tempURL TempURL
	if err := db.Where("token = ? AND expires_at > ?", token, time.Now()).First(&tempURL).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Invalid or expired token"})
	}

	return c.File(tempURL.FilePath)
}

func humanLength(s float64) string {
	ss := int64(s)
	mm, ss := ss/60, ss%60
	hh, mm := mm/60, mm%60

	return fmt.Sprintf("%d:%02d:%02d", hh, mm, ss)
}

func humanSize(bytes int64) string {
	const (
		KiB = 1024
		MiB = 1024 * KiB
		GiB = 1024 * MiB
	)

	if bytes >= GiB {
		return fmt.Sprintf("%.1f GiB", float64(bytes)/float64(GiB))
	} else if bytes >= MiB {
		return fmt.Sprintf("%.1f MiB", float64(bytes)/float64(MiB))
	} else if bytes >= KiB {
		return fmt.Sprintf("%.1f KiB", float64(bytes)/float64(KiB))
	}
	return fmt.Sprintf("%d bytes", bytes)
}
