// auth.go — сценарий логина по номеру телефона и коду подтверждения.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cozyclean/backend/internal/domain/model"
	"github.com/cozyclean/backend/internal/phonecrypt"
)

// TokenIssuer — выпуск идентификационного токена (реализуется token.Codec).
type TokenIssuer interface {
	Issue(uid uuid.UUID, ttl time.Duration) (string, error)
}

// AuthService — логин: проверка кода, шифрование номера,
// поиск/создание пользователя, выпуск токена.
type AuthService struct {
	verifier  CodeVerifier
	cipher    phonecrypt.Cipher
	directory *UserDirectory
	issuer    TokenIssuer
	logger    *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(
	verifier CodeVerifier,
	cipher phonecrypt.Cipher,
	directory *UserDirectory,
	issuer TokenIssuer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		verifier:  verifier,
		cipher:    cipher,
		directory: directory,
		issuer:    issuer,
		logger:    logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет код подтверждения и возвращает токен с пользователем.
// Неверный код — ErrInvalidCredentials; до проверки кода никакие записи
// не создаются.
func (s *AuthService) Login(ctx context.Context, phone, code string) (string, *model.User, error) {
	if phone == "" {
		return "", nil, fmt.Errorf("%w: номер телефона обязателен", ErrValidation)
	}
	if code == "" {
		return "", nil, fmt.Errorf("%w: код подтверждения обязателен", ErrValidation)
	}

	ok, err := s.verifier.VerifyCode(ctx, phone, code)
	if err != nil {
		return "", nil, fmt.Errorf("проверка кода подтверждения: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	// Номер шифруется до любого обращения к хранилищу:
	// открытый текст дальше этой точки не живёт
	encrypted, err := s.cipher.Encrypt(phone)
	if err != nil {
		return "", nil, fmt.Errorf("шифрование номера: %w", err)
	}

	user, isNew, err := s.directory.FindOrCreateByEncryptedPhone(ctx, encrypted)
	if err != nil {
		return "", nil, err
	}

	tok, err := s.issuer.Issue(user.UID, 0)
	if err != nil {
		return "", nil, fmt.Errorf("выпуск токена: %w", err)
	}

	s.logger.Info("Успешный логин",
		slog.String("uid", user.UID.String()),
		slog.Bool("is_new", isNew),
	)
	return tok, user, nil
}
