// Пакет server — HTTP-сервер CozyClean backend с graceful shutdown.
// Без TLS — TLS termination на внешнем балансировщике.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cozyclean/backend/internal/api/handlers"
	"github.com/cozyclean/backend/internal/api/middleware"
	"github.com/cozyclean/backend/internal/config"
)

// Server — HTTP-сервер мобильного бэкенда.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
// auth — Bearer-аутентификация защищённых маршрутов.
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, auth *middleware.BearerAuth) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	// CORS allow-all: бэкенд ходит только с мобильных клиентов,
	// браузерная политика сейчас не ограничивается
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	// Общий лимит частоты на все API-маршруты
	globalLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute, "global")
	// Отдельный жёсткий лимит на логин (перебор кодов подтверждения)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRatePerMinute, "login")

	// Health под общим лимитом (его дёргают и мобильные клиенты),
	// readiness и metrics опрашиваются только инфраструктурой
	router.With(globalLimiter.Middleware()).Get("/health", handler.Health)
	router.Get("/health/ready", handler.HealthReady)
	router.Get("/metrics", handler.GetMetrics)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(globalLimiter.Middleware())

		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware())
			r.Post("/auth/login", handler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware())
			r.Post("/sync/upload", handler.SyncUpload)
			r.Get("/users/me", handler.GetMe)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
