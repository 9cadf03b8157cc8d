// Package server exposes the relevance check over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/document"
	"github.com/megharajeev28/resume-matcher/internal/scoring"
)

const (
	resumeField = "resume"
	jobField    = "job"

	defaultMaxUploadSize = 10 << 20
	// room for multipart boundaries and headers on top of both files
	formOverhead = 1 << 20

	genericFailure = "An error occurred during the relevance check."
)

// Checker scores one résumé against one job description.
type Checker interface {
	Check(ctx context.Context, resume, job string) scoring.Verdict
}

// Extractor decodes an uploaded file into plain text.
type Extractor interface {
	Text(data []byte, ext string) string
}

type Config struct {
	// MaxUploadSize limits each uploaded file, in bytes.
	MaxUploadSize int
	Version       string
	// ReadTimeout and WriteTimeout are passed to the HTTP server; zero means no limit.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	app           *fiber.App
	checker       Checker
	extractor     Extractor
	logger        *zap.Logger
	maxUploadSize int
	version       string
}

type checkResponse struct {
	RequestID string `json:"request_id"`
	scoring.Verdict
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func New(cfg Config, checker Checker, extractor Extractor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}

	s := &Server{
		checker:       checker,
		extractor:     extractor,
		logger:        logger,
		maxUploadSize: cfg.MaxUploadSize,
		version:       cfg.Version,
	}

	app := fiber.New(fiber.Config{
		AppName:               "resume-matcher",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             2*cfg.MaxUploadSize + formOverhead,
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(s.logRequests)

	api := app.Group("/api/v1")
	api.Get("/health", s.health)
	api.Post("/check", s.check)

	s.app = app

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("starting http server", zap.String("listen", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC(),
	})
}

func (s *Server) check(c *fiber.Ctx) error {
	resume, err := s.readUpload(c, resumeField)
	if err != nil {
		return err
	}

	job, err := s.readUpload(c, jobField)
	if err != nil {
		return err
	}

	verdict := s.checker.Check(c.UserContext(), resume, job)

	return c.JSON(checkResponse{
		RequestID: requestID(c),
		Verdict:   verdict,
	})
}

// readUpload validates the named form file and returns its decoded text.
func (s *Server) readUpload(c *fiber.Ctx, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("missing %q file", field))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !document.Supported(ext) {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
			"unsupported %s file type %q, expected one of %s",
			field, ext, strings.Join(document.Extensions(), ", "),
		))
	}

	if header.Size > int64(s.maxUploadSize) {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf(
			"%s file too large, max size: %d bytes", field, s.maxUploadSize,
		))
	}

	data, err := readAll(header, s.maxUploadSize)
	if err != nil {
		return "", fmt.Errorf("reading %s upload: %w", field, err)
	}

	return s.extractor.Text(data, ext), nil
}

func readAll(header *multipart.FileHeader, limit int) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, int64(limit)+1))
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := genericFailure

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(errorResponse{Error: message, Code: code})
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}

	s.logger.Info("http request",
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	)

	return err
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return string(c.Response().Header.Peek(fiber.HeaderXRequestID))
}
