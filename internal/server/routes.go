package server

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"DietAdvisor/internal/bmi"
	"DietAdvisor/web"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// TemplateRenderer is a custom html/template renderer for Echo framework
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = s.ipExtractor
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:       300,
	}))
	e.Use(LoggerMiddleware)

	e.StaticFS("/static", echo.MustSubFS(web.Static, "static"))
	e.Renderer = &TemplateRenderer{
		templates: template.Must(template.ParseFS(web.Templates, "templates/*.html")),
	}

	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// Single page
	e.GET("/", s.indexHandler)

	// Submissions
	e.POST("/advise", s.adviseFormHandler, s.RateLimitMiddleware)
	e.POST("/api/advise", s.adviseJSONHandler, s.RateLimitMiddleware)

	e.GET("/api/deficiencies", s.deficienciesHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	stats := map[string]interface{}{
		"status":            "up",
		"uptime":            time.Since(s.startTime).Round(time.Second).String(),
		"gemini_configured": s.planner.Configured(),
		"gemini_model":      s.planner.Model(),
	}

	if v, err := mem.VirtualMemory(); err == nil {
		stats["ram_usage"] = fmt.Sprintf("%.1f%%", v.UsedPercent)
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		stats["cpu_load"] = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	if !s.planner.Configured() {
		stats["message"] = "GEMINI_API_KEY is not set; diet plans cannot be generated."
	}

	return c.JSON(http.StatusOK, stats)
}

func (s *Server) deficienciesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deficiencies": bmi.DeficiencyOptions(),
	})
}

// LoggerMiddleware attaches a request-scoped logger to both the echo context
// and the request context.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		return next(c)
	}
}

// RateLimitMiddleware rejects clients that submit too often.
func (s *Server) RateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		if !s.limiter.Allow(ip) {
			s.metrics.RateLimited.Inc()
			loggerFrom(c).Warn().Str("ip", ip).Msg("Rate limit exceeded")
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests, please try again later.",
			})
		}
		return next(c)
	}
}

// loggerFrom returns the request logger set by LoggerMiddleware, or the global one.
func loggerFrom(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok {
		return l
	}
	return &log.Logger
}
