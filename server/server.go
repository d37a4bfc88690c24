// Package server exposes a Translator over a JSON HTTP API.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ti-oluwa/tranzlate"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Translators hands out a translator per engine name. An empty name selects
// the default engine.
type Translators interface {
	Translator(name string) (*tranzlate.Translator, error)
	Engines() []string
}

// New creates a router with all routes configured.
func New(translators Translators, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestID())
	r.Use(ginLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": tranzlate.FullVersion()})
	})

	h := &handler{translators: translators, logger: logger}
	v1 := r.Group("/api/v1")
	{
		v1.GET("/engines", h.engines)
		v1.GET("/languages", h.languages)
		v1.POST("/translate", h.translate)
		v1.POST("/detect", h.detect)
	}

	return r
}

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		logger.Info("HTTP request", fields...)
	}
}

// statusFor maps translator errors onto HTTP statuses. Caller mistakes are
// 400s; anything else came from the engine.
func statusFor(err error) int {
	var (
		invalid     *tranzlate.InvalidEngineError
		unsupported *tranzlate.UnsupportedLanguageError
		procErr     *tranzlate.ProcessorError
	)
	switch {
	case errors.As(err, &invalid),
		errors.As(err, &unsupported),
		errors.As(err, &procErr),
		errors.Is(err, tranzlate.ErrEmptyLanguage),
		errors.Is(err, tranzlate.ErrSameLanguage),
		errors.Is(err, tranzlate.ErrEmptyText),
		errors.Is(err, tranzlate.ErrUnknownEncoding):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: err.Error(), RequestID: c.GetString("request_id")})
}
