// auth.go — JWT middleware аутентификации мобильных клиентов.
// Извлекает Bearer token, проверяет подпись и срок действия через token.Codec,
// помещает UID пользователя в контекст запроса.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/cozyclean/backend/internal/api/errors"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyUserID — UID аутентифицированного пользователя в контексте запроса.
const ContextKeyUserID contextKey = "user_id"

// TokenVerifier — проверка идентификационного токена (реализуется token.Codec).
type TokenVerifier interface {
	// Verify проверяет подпись и срок действия, возвращает UID из subject.
	Verify(raw string) (uuid.UUID, error)
}

// BearerAuth — middleware аутентификации по Bearer token.
type BearerAuth struct {
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewBearerAuth создаёт middleware аутентификации.
func NewBearerAuth(verifier TokenVerifier, logger *slog.Logger) *BearerAuth {
	return &BearerAuth{
		verifier: verifier,
		logger:   logger.With(slog.String("component", "bearer_auth")),
	}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Любой дефект токена — отсутствие заголовка, не-Bearer схема, битая
// подпись, истёкший срок — даёт одинаковый ответ 401: формат ошибки
// не должен подсказывать атакующему, что именно не так с токеном.
func (a *BearerAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Требуется аутентификация")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				apierrors.Unauthorized(w, "Требуется аутентификация")
				return
			}

			uid, err := a.verifier.Verify(parts[1])
			if err != nil {
				a.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Требуется аутентификация")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext извлекает UID пользователя из контекста запроса.
// Возвращает false, если запрос не прошёл через BearerAuth.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return uid, ok
}
