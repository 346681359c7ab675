// sync.go — обработчик загрузки батча синхронизации.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apierrors "github.com/cozyclean/backend/internal/api/errors"
	"github.com/cozyclean/backend/internal/api/middleware"
	"github.com/cozyclean/backend/internal/service"
)

// syncActionRequest — одно действие в теле запроса.
type syncActionRequest struct {
	MD5          string `json:"md5"`
	ActionType   int    `json:"action_type"`
	ActionSource string `json:"action_source,omitempty"`
}

// syncUploadRequest — тело запроса POST /api/v1/sync/upload.
type syncUploadRequest struct {
	SessionID  string              `json:"session_id"`
	Mode       int                 `json:"mode"`
	SavedBytes int64               `json:"saved_bytes,omitempty"`
	StartTime  *time.Time          `json:"start_time,omitempty"`
	DeviceID   *string             `json:"device_id,omitempty"`
	Actions    []syncActionRequest `json:"actions"`
}

// syncUploadResponse — ответ успешной синхронизации.
type syncUploadResponse struct {
	Status      string `json:"status"`
	SyncedCount int    `json:"synced_count"`
}

// SyncUpload — POST /api/v1/sync/upload (требует Bearer token).
// Атомарно фиксирует батч действий пользователя.
func (h *APIHandler) SyncUpload(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req syncUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	in := service.UploadInput{
		SessionID:  req.SessionID,
		Mode:       req.Mode,
		SavedBytes: req.SavedBytes,
		StartTime:  req.StartTime,
		DeviceID:   req.DeviceID,
		Actions:    make([]service.ActionInput, len(req.Actions)),
	}
	for i, a := range req.Actions {
		in.Actions[i] = service.ActionInput{
			MD5:          a.MD5,
			ActionType:   a.ActionType,
			ActionSource: a.ActionSource,
		}
	}

	count, err := h.sync.Upload(r.Context(), uid, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrDuplicateSession):
			apierrors.Conflict(w, "Сессия с таким session_id уже синхронизирована")
		case errors.Is(err, service.ErrSyncFailed):
			apierrors.SyncFailed(w, "Не удалось синхронизировать батч, повторите позже")
		default:
			h.logger.Error("Ошибка синхронизации", "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, syncUploadResponse{
		Status:      "ok",
		SyncedCount: count,
	})
}
