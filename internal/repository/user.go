package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cozyclean/backend/internal/domain/model"
)

// UserRepository — доступ к таблице users.
type UserRepository interface {
	// Create вставляет нового пользователя. При коллизии по phone_number
	// возвращает ErrConflict.
	Create(ctx context.Context, u *model.User) error
	// GetByEncryptedPhone возвращает пользователя по зашифрованному номеру.
	GetByEncryptedPhone(ctx context.Context, encryptedPhone string) (*model.User, error)
	// GetByID возвращает пользователя по UUID.
	GetByID(ctx context.Context, uid uuid.UUID) (*model.User, error)
	// TouchLastLogin обновляет last_login_at текущим временем БД.
	TouchLastLogin(ctx context.Context, uid uuid.UUID) (time.Time, error)
	// AddSyncTotals прибавляет к накопительным счётчикам пользователя
	// результаты одной sync-сессии.
	AddSyncTotals(ctx context.Context, uid uuid.UUID, deletedCount int, savedBytes int64) error
	// Delete удаляет пользователя (каскадно удаляются его сессии и действия).
	Delete(ctx context.Context, uid uuid.UUID) error
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `uid, phone_number, nickname, avatar_url, is_pro, pro_expire_at,
	current_energy, total_saved_bytes, total_deleted_count, last_login_at, created_at`

// scanUser сканирует строку результата в модель User.
func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.UID, &u.PhoneNumber, &u.Nickname, &u.AvatarURL, &u.IsPro, &u.ProExpireAt,
		&u.CurrentEnergy, &u.TotalSavedBytes, &u.TotalDeletedCount, &u.LastLoginAt, &u.CreatedAt,
	)
	return u, err
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (uid, phone_number, is_pro, current_energy, last_login_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		u.UID, u.PhoneNumber, u.IsPro, u.CurrentEnergy, u.LastLoginAt,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Номер уже зарегистрирован — это тот же пользователь,
			// вызывающая сторона должна повторить поиск
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetByEncryptedPhone(ctx context.Context, encryptedPhone string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE phone_number = $1`, userColumns)
	u, err := scanUser(r.db.QueryRow(ctx, query, encryptedPhone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска пользователя по номеру: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, uid uuid.UUID) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE uid = $1`, userColumns)
	u, err := scanUser(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, uid uuid.UUID) (time.Time, error) {
	var at time.Time
	err := r.db.QueryRow(ctx,
		`UPDATE users SET last_login_at = now() WHERE uid = $1 RETURNING last_login_at`,
		uid,
	).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("ошибка обновления last_login_at: %w", err)
	}
	return at, nil
}

func (r *userRepo) AddSyncTotals(ctx context.Context, uid uuid.UUID, deletedCount int, savedBytes int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET total_deleted_count = total_deleted_count + $2,
			total_saved_bytes = total_saved_bytes + $3
		WHERE uid = $1`,
		uid, deletedCount, savedBytes,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления счётчиков пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, uid uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
