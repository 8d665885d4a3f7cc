/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the advisor,
the Gemini client, sessions and metrics into the router.
*/
package server

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"DietAdvisor/internal/advisor"
	"DietAdvisor/internal/config"
	"DietAdvisor/internal/geminiservice"
	"DietAdvisor/internal/metrics"
	"DietAdvisor/internal/utility"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// PlanService is the text generation backend as seen by the server.
type PlanService interface {
	advisor.Planner
	Configured() bool
	Model() string
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	cfg *config.Config

	planner PlanService
	advisor *advisor.Advisor

	// store carries the advisor session ID in a signed cookie.
	store sessions.Store

	limiter     *utility.IPRateLimiter
	ipExtractor echo.IPExtractor
	metrics     *metrics.Metrics
	registry    *prometheus.Registry

	startTime time.Time
}

// NewServer builds the Gemini-backed application and returns a configured *http.Server.
func NewServer(cfg *config.Config) (*http.Server, error) {
	app, err := newApp(cfg, geminiservice.NewClient(cfg.Gemini))
	if err != nil {
		return nil, err
	}

	if !app.planner.Configured() {
		log.Warn().Msg("GEMINI_API_KEY is not set; diet plan requests will fail")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  cfg.Server.IdleTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, nil
}

func newApp(cfg *config.Config, planner PlanService) (*Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	adv, err := advisor.New(planner, m, cfg.Session.MaxSessions)
	if err != nil {
		return nil, err
	}

	limiter, err := utility.NewIPRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, cfg.RateLimit.MaxClients)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	ipExtractor, err := utility.NewIPExtractor(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		log.Warn().Msg("SESSION_SECRET is not set; using a random key, sessions reset on restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Server{
		cfg:         cfg,
		planner:     planner,
		advisor:     adv,
		store:       store,
		limiter:     limiter,
		ipExtractor: ipExtractor,
		metrics:     m,
		registry:    registry,
		startTime:   time.Now(),
	}, nil
}
