// users.go — UserDirectory: справочник пользователей по зашифрованному номеру.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cozyclean/backend/internal/domain/model"
	"github.com/cozyclean/backend/internal/repository"
)

// Ключ app_config с дневной квотой энергии бесплатного тарифа.
const ConfigKeyFreeEnergy = "free_user_daily_energy"

// Квота энергии, если ключ отсутствует в app_config.
const defaultFreeEnergy = 50

// UserDirectory — поиск/создание пользователей по зашифрованному номеру
// телефона. Открытый номер сюда не попадает и не логируется.
type UserDirectory struct {
	users     repository.UserRepository
	appConfig repository.AppConfigRepository
	logger    *slog.Logger
}

// NewUserDirectory создаёт справочник пользователей.
func NewUserDirectory(
	users repository.UserRepository,
	appConfig repository.AppConfigRepository,
	logger *slog.Logger,
) *UserDirectory {
	return &UserDirectory{
		users:     users,
		appConfig: appConfig,
		logger:    logger.With(slog.String("component", "user_directory")),
	}
}

// FindOrCreateByEncryptedPhone возвращает пользователя по зашифрованному
// номеру, создавая его при первом обращении (isNew=true). У существующего
// пользователя обновляется last_login_at.
//
// Гонка одновременных первых логинов разрешается через уникальный индекс:
// проигравший вставку получает ErrConflict и повторяет поиск.
func (d *UserDirectory) FindOrCreateByEncryptedPhone(ctx context.Context, encryptedPhone string) (*model.User, bool, error) {
	u, err := d.users.GetByEncryptedPhone(ctx, encryptedPhone)
	if err == nil {
		at, terr := d.users.TouchLastLogin(ctx, u.UID)
		if terr != nil {
			return nil, false, fmt.Errorf("обновление last_login_at: %w", terr)
		}
		u.LastLoginAt = &at
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	// Первый контакт — создаём учётную запись
	now := time.Now().UTC()
	newUser := &model.User{
		UID:           uuid.New(),
		PhoneNumber:   encryptedPhone,
		CurrentEnergy: d.freeEnergy(ctx),
		LastLoginAt:   &now,
	}

	err = d.users.Create(ctx, newUser)
	if err == nil {
		d.logger.Info("Создан новый пользователь", slog.String("uid", newUser.UID.String()))
		return newUser, true, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, false, err
	}

	// Проиграли гонку параллельному логину с этим же номером —
	// пользователь уже существует, повторяем как поиск
	u, err = d.users.GetByEncryptedPhone(ctx, encryptedPhone)
	if err != nil {
		return nil, false, fmt.Errorf("повторный поиск после конфликта: %w", err)
	}
	at, err := d.users.TouchLastLogin(ctx, u.UID)
	if err != nil {
		return nil, false, fmt.Errorf("обновление last_login_at: %w", err)
	}
	u.LastLoginAt = &at
	return u, false, nil
}

// GetByID возвращает профиль пользователя.
func (d *UserDirectory) GetByID(ctx context.Context, uid uuid.UUID) (*model.User, error) {
	u, err := d.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// freeEnergy читает стартовую квоту энергии из app_config,
// при отсутствии ключа или ошибке — значение по умолчанию.
func (d *UserDirectory) freeEnergy(ctx context.Context) int {
	v, err := d.appConfig.GetInt(ctx, ConfigKeyFreeEnergy)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			d.logger.Warn("Ошибка чтения квоты энергии из app_config", "error", err)
		}
		return defaultFreeEnergy
	}
	return v
}
