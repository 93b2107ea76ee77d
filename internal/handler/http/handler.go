package http

import (
	"time"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/service"
)

type Handler struct {
	services *service.Services
	renderer Renderer

	// limiter throttles the credential endpoints per client IP.
	limiter *ipRateLimiter

	uploadDir      string
	requestTimeout time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, renderer Renderer, cfg config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		renderer:       renderer,
		limiter:        newIPRateLimiter(cfg.Server.RateLimit.PerMinute, cfg.Server.RateLimit.Burst),
		uploadDir:      cfg.Storage.Media.UploadDir,
		requestTimeout: cfg.Server.RequestTimeout,
		logger:         logger,
	}
}
