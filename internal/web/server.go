// Package web serves the screening wizard over HTTP. Handlers load the
// caller's session, apply one transition, save it and redirect; every
// decision is made by the screening package.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apperrors "github.com/shravani77747/ASD-Screening/internal/errors"
	"github.com/shravani77747/ASD-Screening/internal/frontend"
	"github.com/shravani77747/ASD-Screening/internal/middleware"
	"github.com/shravani77747/ASD-Screening/internal/monitoring"
	"github.com/shravani77747/ASD-Screening/internal/questionnaire"
	"github.com/shravani77747/ASD-Screening/internal/ratelimit"
	"github.com/shravani77747/ASD-Screening/internal/report"
	"github.com/shravani77747/ASD-Screening/internal/screening"
	"github.com/shravani77747/ASD-Screening/internal/security"
	"github.com/shravani77747/ASD-Screening/internal/sessions"
)

// ModelInfo describes the loaded classifier on /health
type ModelInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Kind       string `json:"kind"`
	Categories string `json:"categories"`
}

// Deps are the collaborators shared by every request. All are required
// except Redis.
type Deps struct {
	Evaluator *screening.Evaluator
	Store     sessions.Store
	Signer    *sessions.TokenSigner
	Renderer  report.Renderer
	Catalog   *questionnaire.Catalog
	Templates *frontend.Templates
	Metrics   *monitoring.Metrics
	Logger    *monitoring.Logger
	Limiter   *ratelimit.RateLimiter
	Security  *security.SecurityMiddleware
	Redis     *ratelimit.RedisClient
	Model     ModelInfo
	Now       func() time.Time
}

// Options are hosting switches from the environment
type Options struct {
	AllowedOrigins    []string
	TrustedProxies    []string
	EnableHSTS        bool
	CSPReportURI      string
	SecureCookie      bool
	SubmitLimitPerMin int
}

// Server holds the wizard handlers
type Server struct {
	deps        Deps
	opts        Options
	compression *middleware.CompressionMiddleware
}

func (d Deps) validate() error {
	switch {
	case d.Evaluator == nil:
		return errors.New("missing evaluator")
	case d.Store == nil:
		return errors.New("missing session store")
	case d.Signer == nil:
		return errors.New("missing token signer")
	case d.Renderer == nil:
		return errors.New("missing report renderer")
	case d.Catalog == nil:
		return errors.New("missing questionnaire catalog")
	case d.Templates == nil:
		return errors.New("missing templates")
	case d.Metrics == nil || d.Logger == nil:
		return errors.New("missing monitoring")
	case d.Limiter == nil:
		return errors.New("missing rate limiter")
	case d.Security == nil:
		return errors.New("missing security middleware")
	}
	return nil
}

// NewRouter wires middleware and routes. ErrorHandler sits after CSP so error
// pages get a nonce, and before the rate limiter so 429s are rendered.
func NewRouter(deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.SubmitLimitPerMin <= 0 {
		opts.SubmitLimitPerMin = ratelimit.DefaultConfig().SubmitLimitPerMin
	}
	assets, err := frontend.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("failed to load static assets: %w", err)
	}

	s := &Server{
		deps:        deps,
		opts:        opts,
		compression: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r.Use(apperrors.RecoveryHandler())
	r.Use(s.compression.Handler())
	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(deps.Metrics, deps.Logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(deps.Logger))
	r.Use(security.SecurityHeadersMiddleware(opts.EnableHSTS))
	r.Use(security.CSPMiddleware(opts.CSPReportURI))

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", monitoring.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Disposition", monitoring.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(apperrors.ErrorHandler(s.renderError))
	r.Use(deps.Security.RequestTimeout, deps.Security.LimitBody, deps.Security.ValidateContentType)

	// Operational endpoints are not rate limited
	r.GET("/health", s.health)
	r.GET("/metrics", s.metrics)
	r.GET("/static/*filepath", frontend.NewStaticHandler(assets))

	wizard := r.Group("/", deps.Limiter.IPRateLimitMiddleware())
	{
		wizard.GET("/", s.index)
		wizard.POST("/intake", s.intake)
		wizard.POST("/questionnaire", deps.Limiter.EndpointRateLimitMiddleware("questionnaire", opts.SubmitLimitPerMin), s.submit)
		wizard.GET("/report", deps.Limiter.EndpointRateLimitMiddleware("report", opts.SubmitLimitPerMin), s.report)
		wizard.POST("/restart", s.restart)
	}

	return r, nil
}

func (s *Server) now() time.Time {
	return s.deps.Now()
}

// render writes a wizard page with the catalog's title and disclaimer
func (s *Server) render(c *gin.Context, status int, page string, view any) {
	err := s.deps.Templates.Render(c, status, page, frontend.PageData{
		Title:      s.deps.Catalog.Title,
		Disclaimer: s.deps.Catalog.Disclaimer,
		View:       view,
	})
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("page rendering failed", err))
	}
}

// renderError is the error page for the error handler. Clients asking for
// JSON get the AppError body instead.
func (s *Server) renderError(c *gin.Context, appErr *apperrors.AppError) {
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(appErr.HTTPStatus, appErr.Response())
		return
	}

	err := s.deps.Templates.Render(c, appErr.HTTPStatus, frontend.PageError, frontend.PageData{
		Title:      s.deps.Catalog.Title,
		Disclaimer: s.deps.Catalog.Disclaimer,
		View: frontend.ErrorView{
			Heading: errorHeading(appErr.Category),
			Message: appErr.ErrBuilder.Msg,
		},
	})
	if err != nil {
		frontend.StatusPage(c, appErr.HTTPStatus)
	}
}

func errorHeading(category apperrors.ErrorCategory) string {
	switch category {
	case apperrors.CategoryValidation:
		return "Please check your answers"
	case apperrors.CategoryConflict:
		return "This step is not available"
	case apperrors.CategoryRateLimit:
		return "Too many requests"
	case apperrors.CategoryNetwork, apperrors.CategoryTimeout:
		return "Service temporarily unavailable"
	default:
		return "Something went wrong"
	}
}
