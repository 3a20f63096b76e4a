package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shravani77747/ASD-Screening/internal/config"
	apperrors "github.com/shravani77747/ASD-Screening/internal/errors"
	"github.com/shravani77747/ASD-Screening/internal/frontend"
	"github.com/shravani77747/ASD-Screening/internal/model"
	"github.com/shravani77747/ASD-Screening/internal/monitoring"
	"github.com/shravani77747/ASD-Screening/internal/questionnaire"
	"github.com/shravani77747/ASD-Screening/internal/ratelimit"
	"github.com/shravani77747/ASD-Screening/internal/report"
	"github.com/shravani77747/ASD-Screening/internal/resilience"
	"github.com/shravani77747/ASD-Screening/internal/screening"
	"github.com/shravani77747/ASD-Screening/internal/security"
	"github.com/shravani77747/ASD-Screening/internal/sessions"
	"github.com/shravani77747/ASD-Screening/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Structured logging setup
	appLogger := monitoring.NewLogger(monitoring.ParseLevel(cfg.LogLevel))
	slog.SetDefault(appLogger.Logger)
	gin.SetMode(cfg.GinMode)

	if cfg.SessionSecretGenerated {
		slog.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive a restart or be shared between instances")
	}

	a, err := newApp(cfg, appLogger)
	if err != nil {
		appErr := apperrors.ToAppError(err)
		slog.Error("Failed to start", "error_category", appErr.Category, "error", err)
		os.Exit(1)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "model", a.modelName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		a.close()
		os.Exit(1)
	}

	a.close()
	slog.Info("Server exited")
}

// app is everything main starts and must stop
type app struct {
	router    *gin.Engine
	modelName string
	redis     *ratelimit.RedisClient
	limiter   *ratelimit.RateLimiter
	memory    *sessions.MemoryStore
}

// newApp loads the model and catalog and wires the HTTP stack. A model that
// cannot be used is returned as *model.LoadError.
func newApp(cfg config.Config, appLogger *monitoring.Logger) (*app, error) {
	m, err := model.Load(cfg.ModelPath, screening.FeatureNames[:])
	if err != nil {
		return nil, err
	}
	scheme, version, tables := m.CategoryEncoding()
	categories, err := screening.NewCategoryEncoding(scheme, version, tables)
	if err != nil {
		return nil, &model.LoadError{Path: cfg.ModelPath, Err: err}
	}

	catalog, err := questionnaire.Load(cfg.QuestionnairePath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("questionnaire could not be loaded", err)
	}
	templates, err := frontend.LoadTemplates()
	if err != nil {
		return nil, apperrors.NewConfigurationError("templates could not be parsed", err)
	}
	signer, err := sessions.NewTokenSigner(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, apperrors.NewConfigurationError("session signer", err)
	}

	evaluator := screening.NewEvaluator(
		screening.NewEncoder(categories),
		m,
		screening.NewGuidanceSelector(rand.NewSource(time.Now().UnixNano())),
	)

	a := &app{modelName: fmt.Sprintf("%s@%s", m.Name(), m.Version())}

	// Redis is optional; without it sessions and rate limits stay in process
	a.redis, err = ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable, falling back to in-memory sessions", "error", err)
	}

	var store sessions.Store
	if a.redis.IsEnabled() {
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
		})
		store = sessions.NewGuardedStore(sessions.NewRedisStore(a.redis.GetClient(), cfg.SessionTTL), breaker)
	} else {
		a.memory = sessions.NewMemoryStore(cfg.SessionTTL)
		store = a.memory
	}

	appMetrics := monitoring.NewMetrics()
	a.limiter = ratelimit.NewRateLimiter(a.redis, ratelimit.Config{
		IPLimitPerMin:     cfg.RateLimitPerMin,
		SubmitLimitPerMin: cfg.SubmitRateLimitPerMin,
		BurstMultiplier:   ratelimit.DefaultConfig().BurstMultiplier,
	}, appMetrics)

	a.router, err = web.NewRouter(web.Deps{
		Evaluator: evaluator,
		Store:     store,
		Signer:    signer,
		Renderer:  report.NewPDFRenderer(),
		Catalog:   catalog,
		Templates: templates,
		Metrics:   appMetrics,
		Logger:    appLogger,
		Limiter:   a.limiter,
		Security:  security.NewSecurityMiddleware(security.DefaultSecurityConfig()),
		Redis:     a.redis,
		Model: web.ModelInfo{
			Name:       m.Name(),
			Version:    m.Version(),
			Kind:       string(m.Kind()),
			Categories: categories.Name(),
		},
	}, web.Options{
		AllowedOrigins:    cfg.AllowedOrigins,
		TrustedProxies:    cfg.TrustedProxies,
		EnableHSTS:        cfg.EnableHSTS,
		CSPReportURI:      cfg.CSPReportURI,
		SecureCookie:      cfg.SecureCookie,
		SubmitLimitPerMin: cfg.SubmitRateLimitPerMin,
	})
	if err != nil {
		a.close()
		return nil, apperrors.NewConfigurationError("router", err)
	}

	appLogger.SystemLogger("startup", fmt.Sprintf("model %s (%s, categories %s) loaded", a.modelName, m.Kind(), categories.Name()))
	return a, nil
}

func (a *app) close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.memory != nil {
		a.memory.Close()
	}
	apperrors.SafeClose(a.redis, "redis")
}
