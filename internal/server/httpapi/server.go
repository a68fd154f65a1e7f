// Package httpapi exposes the editing-session subsystem to the browser
// wizard over JSON/HTTP.
package httpapi

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/sessions"
	"github.com/lighthouse-crew/profilesync/internal/server/uploads"
)

type HTTPServer struct {
	address   string
	sessions  *sessions.Service
	uploads   *uploads.Service
	db        *sql.DB
	logger    logging.Logger
	jwtSecret []byte
	app       *fiber.App
}

func NewHTTPServer(a string, l logging.Logger, ss *sessions.Service, us *uploads.Service, db *sql.DB, secretKey string) *HTTPServer {
	s := &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		sessions:  ss,
		uploads:   us,
		db:        db,
		jwtSecret: []byte(secretKey),
	}
	s.app = s.newApp()
	return s
}

func (s *HTTPServer) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "profilesync",
		DisableStartupMessage: true,
	})
	s.registerRoutes(app)
	return app
}

func (s *HTTPServer) registerRoutes(app *fiber.App) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/health", s.Health)

	sess := v1.Group("/session", s.accessTokenMiddleware)
	sess.Post("/", s.StartSession)
	sess.Delete("/", s.EndSession)
	sess.Put("/state", s.UpdateState)
	sess.Post("/flush", s.FlushSession)
	sess.Get("/status", s.SessionStatus)
	sess.Post("/validate/:step", s.ValidateStep)

	up := v1.Group("/uploads", s.accessTokenMiddleware)
	up.Post("/photo", s.PhotoUploadURL)
}

func (s *HTTPServer) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.app.Listen(s.address); err != nil {
		return err
	}

	return nil
}
