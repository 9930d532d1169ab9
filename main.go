package main

import (
	"fmt"
	"html/template"
	"io"
	golog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stitcher-site/clips"
	"stitcher-site/config"
	"stitcher-site/database"
	"stitcher-site/exports"
	"stitcher-site/ffmpeg"
	"stitcher-site/handlers"
	"stitcher-site/users"
)

var db *gorm.DB

func ensureAdminAccount(db *gorm.DB) error {

	var user users.User
	if err := db.Where("username = ?", "admin").First(&user).Error; err != nil {
		// no such user

		password, err := config.GetAdminInitialPassword()
		if err != nil {
			return err
		}

		err = users.Create(db, "admin", password)
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {

	initLogger()

	log.Infof("GitSHA: %s", config.GetGitSHA())
	log.Infof("BuildDate: %s", config.GetBuildDate())

	ffmpeg.Init(log)
	exports.Init(log)
	if err := handlers.Init(log); err != nil {
		log.Panicln(err)
	}

	// the app stays up without ffmpeg; export controls are disabled and a
	// queued export would fail with a message anyway
	avail := ffmpeg.Check()
	ffmpegInstalled = avail.Installed
	if avail.Installed {
		log.Infof("found %s", avail.Version)
	} else {
		log.Warnf("%s", avail.Error)
	}

	gormLogger := logger.New(
		golog.New(os.Stdout, "\r\n", golog.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			ParameterizedQueries:      true,        // Don't include params in the SQL log
			Colorful:                  false,       // Disable color
		},
	)

	// Create config database
	err := os.MkdirAll(config.GetConfigDir(), 0700)
	if err != nil {
		log.Panicf("failed to create config dir %s", config.GetConfigDir())
	}

	// Initialize database
	dbPath := filepath.Join(config.GetConfigDir(), "stitcher.db")
	db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Panicf("failed to connect to database %s", dbPath)
	}

	// set only a single connection so we don't actually have concurrent writes
	sqlDB, err := db.DB()
	if err != nil {
		log.Panicln("failed to retrieve database")
	}
	sqlDB.SetMaxOpenConns(1)

	// Migrate the schema
	db.AutoMigrate(&clips.Session{}, &clips.Clip{}, &clips.BackgroundImage{},
		&exports.Export{}, &users.User{}, &TempURL{})

	database.Init(db, log)
	defer database.Fini()

	go PeriodicCleanup()

	// create a user
	err = ensureAdminAccount(db)
	if err != nil {
		panic(fmt.Sprintf("failed to create admin user: %v", err))
	}

	// create the cookie store
	key, err := config.GetSessionAuthKey()
	if err != nil {
		panic(fmt.Sprintf("%v", err))
	}
	store = sessions.NewCookieStore(key)

	// Initialize Echo
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Templates
	t := &Template{
		templates: template.Must(template.ParseGlob("templates/*.html")),
	}
	e.Renderer = t

	// Routes
	e.GET("/", homeHandler)
	e.GET("/login", loginHandler)
	e.POST("/login", loginPostHandler)
	e.GET("/logout", logoutHandler)
	e.GET("/sessions", sessionsHandler, authMiddleware)
	e.POST("/sessions", sessionCreateHandler, authMiddleware)
	e.GET("/session/:id", sessionHandler, authMiddleware)
	e.POST("/session/:id/delete", sessionDeleteHandler, authMiddleware)
	e.POST("/session/:id/clips", addClipHandler, authMiddleware)
	e.POST("/clip/:token/delete", clipDeleteHandler, authMiddleware)
	e.POST("/clip/:token/move", clipMoveHandler, authMiddleware)
	e.POST("/session/:id/image", imagePostHandler, authMiddleware)
	e.POST("/session/:id/image/delete", imageDeleteHandler, authMiddleware)
	e.POST("/session/:id/settings", settingsHandler, authMiddleware)
	e.POST("/session/:id/export", exportPostHandler, authMiddleware)
	e.GET("/export/:id", exportStatusHandler, authMiddleware)
	e.GET("/export/:id/download", exportDownloadHandler, authMiddleware)
	e.GET("/temp/:token", tempHandler)
	e.GET("/status", handlers.StatusGet, authMiddleware)

	dataGroup := e.Group("/data")
	dataGroup.Use(authMiddleware)
	dataGroup.Static("/", config.GetDataDir())

	staticGroup := e.Group("/static")
	staticGroup.Use(authMiddleware)
	staticGroup.Static("/", "static")

	secure := config.GetSecure()

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // seconds
		HttpOnly: true,
		Secure:   secure,
	}

	// start the export worker
	go exportWorker()

	// Start server
	e.Logger.Fatal(e.Start(":8080"))
}

// Template renderer
type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
