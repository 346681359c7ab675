// handler.go — основной обработчик API CozyClean backend.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cozyclean/backend/internal/domain/model"
	"github.com/cozyclean/backend/internal/service"
)

// AuthService — сценарий логина (реализуется service.AuthService).
type AuthService interface {
	Login(ctx context.Context, phone, code string) (string, *model.User, error)
}

// SyncService — процессор sync-upload (реализуется service.SyncService).
type SyncService interface {
	Upload(ctx context.Context, uid uuid.UUID, in service.UploadInput) (int, error)
}

// UserDirectory — справочник пользователей (реализуется service.UserDirectory).
type UserDirectory interface {
	GetByID(ctx context.Context, uid uuid.UUID) (*model.User, error)
}

// APIHandler — основной обработчик API мобильного бэкенда.
type APIHandler struct {
	health *HealthHandler
	auth   AuthService
	sync   SyncService
	users  UserDirectory
	logger *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	auth AuthService,
	sync SyncService,
	users UserDirectory,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health: health,
		auth:   auth,
		sync:   sync,
		users:  users,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// Health — health endpoint (делегируется в HealthHandler).
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.health.Health(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
