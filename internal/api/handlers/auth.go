// auth.go — обработчик логина по номеру телефона и коду подтверждения.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/cozyclean/backend/internal/api/errors"
	"github.com/cozyclean/backend/internal/service"
)

// loginRequest — тело запроса POST /api/v1/auth/login.
type loginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// loginUser — вложенный объект user в ответе логина.
type loginUser struct {
	ID    string `json:"id"`
	IsPro bool   `json:"is_pro"`
}

// loginResponse — ответ логина.
type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

// Login — POST /api/v1/auth/login.
// Проверяет код подтверждения и возвращает токен сессии.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apierrors.InvalidCredentials(w, "Неверный код подтверждения")
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка логина", "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User: loginUser{
			ID:    user.UID.String(),
			IsPro: user.IsPro,
		},
	})
}
