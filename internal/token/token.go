// Пакет token — кодек идентификационных токенов.
// Выпускает и проверяет подписанные JWT с симметричным секретом (HMAC).
// Токен несёт только uid (sub) и срок действия (exp); никакого
// серверного состояния сессий нет.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken — токен не прошёл проверку: неверная подпись,
// некорректная структура claims, истёкший срок или нечитаемый subject.
// Причина намеренно не детализируется.
var ErrInvalidToken = errors.New("недействительный токен")

// Codec выпускает и проверяет токены. Потокобезопасен, создаётся один
// раз при старте процесса.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
}

// NewCodec создаёт кодек.
// algorithm — HS256, HS384 или HS512; defaultTTL — срок действия,
// применяемый когда Issue вызывается с ttl <= 0.
func NewCodec(secret, algorithm string, defaultTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("секрет подписи не может быть пустым")
	}
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("некорректный TTL по умолчанию: %v", defaultTTL)
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("неподдерживаемый алгоритм подписи: %q", algorithm)
	}

	return &Codec{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
	}, nil
}

// Issue выпускает подписанный токен для пользователя uid.
// ttl <= 0 — используется TTL по умолчанию.
func (c *Codec) Issue(uid uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   uid.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет токен и возвращает uid из subject.
// Проверка «всё или ничего»: любая неконсистентность — ErrInvalidToken.
func (c *Codec) Verify(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return uid, nil
}
