// users.go — обработчик профиля пользователя.
package handlers

import (
	"errors"
	"net/http"
	"time"

	apierrors "github.com/cozyclean/backend/internal/api/errors"
	"github.com/cozyclean/backend/internal/api/middleware"
	"github.com/cozyclean/backend/internal/service"
)

// userProfileResponse — ответ GET /api/v1/users/me.
// Номер телефона (даже зашифрованный) наружу не отдаётся.
type userProfileResponse struct {
	ID                string     `json:"id"`
	Nickname          *string    `json:"nickname,omitempty"`
	AvatarURL         *string    `json:"avatar_url,omitempty"`
	IsPro             bool       `json:"is_pro"`
	ProExpireAt       *time.Time `json:"pro_expire_at,omitempty"`
	CurrentEnergy     int        `json:"current_energy"`
	TotalSavedBytes   int64      `json:"total_saved_bytes"`
	TotalDeletedCount int        `json:"total_deleted_count"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// GetMe — GET /api/v1/users/me (требует Bearer token).
// Возвращает профиль аутентифицированного пользователя.
func (h *APIHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	user, err := h.users.GetByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Токен валиден, но пользователь удалён
			apierrors.NotFound(w, "Пользователь не найден")
			return
		}
		h.logger.Error("Ошибка получения профиля", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, userProfileResponse{
		ID:                user.UID.String(),
		Nickname:          user.Nickname,
		AvatarURL:         user.AvatarURL,
		IsPro:             user.IsPro,
		ProExpireAt:       user.ProExpireAt,
		CurrentEnergy:     user.CurrentEnergy,
		TotalSavedBytes:   user.TotalSavedBytes,
		TotalDeletedCount: user.TotalDeletedCount,
		LastLoginAt:       user.LastLoginAt,
		CreatedAt:         user.CreatedAt,
	})
}
