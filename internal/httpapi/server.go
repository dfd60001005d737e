package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kitbuilder587/essayblitz/internal/metrics"
	"github.com/kitbuilder587/essayblitz/internal/ratelimit"
	"github.com/kitbuilder587/essayblitz/internal/service"
)

const surface = "http"

type Config struct {
	Addr              string
	RequestsPerMinute int
	AllowOrigins      []string
}

// Server - JSON API поверх FeedbackService. Состояния между запросами нет,
// кроме окна лимитера.
type Server struct {
	router   *gin.Engine
	feedback service.FeedbackService
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	srv      *http.Server
}

func New(cfg Config, feedbackSvc service.FeedbackService, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:   gin.New(),
		feedback: feedbackSvc,
		limiter:  ratelimit.New(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
		metrics:  m,
		logger:   logger,
	}

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsCfg.ExposeHeaders = []string{requestIDHeader, "Retry-After"}

	s.router.Use(requestID(), requestLogger(logger), gin.Recovery(), cors.New(corsCfg))
	s.setupRoutes()

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.health)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.router.Group("/v1")
	{
		v1.GET("/rubric", s.rubric)
		v1.POST("/feedback", s.rateLimit(), s.createFeedback)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run блокируется до отмены ctx, потом аккуратно гасит сервер
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http api stopped")
	return ctx.Err()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if s.limiter.Allow(key) {
			c.Next()
			return
		}

		retryAfter := time.Until(s.limiter.ResetTime(key)).Round(time.Second)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		c.Header("Retry-After", formatSeconds(retryAfter))

		s.logger.Warn("rate limit exceeded",
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("retry_after", retryAfter),
		)
		if s.metrics != nil {
			s.metrics.RecordRateLimitHit(surface)
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
			Error: "too many requests",
			Code:  codeRateLimited,
		})
	}
}
