package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cozyclean/backend/internal/domain/model"
)

// SyncRepository — доступ к таблицам sync_session_logs и sync_photo_actions.
// Для атомарной загрузки батча создаётся поверх pgx.Tx (см. TxRunner).
type SyncRepository interface {
	// CreateSession вставляет сводку сессии. Повторный session_id → ErrConflict.
	CreateSession(ctx context.Context, s *model.SyncSession) error
	// GetSession возвращает сводку сессии по идентификатору.
	GetSession(ctx context.Context, sessionID string) (*model.SyncSession, error)
	// InsertActions массово вставляет действия (pgx CopyFrom).
	// Возвращает количество вставленных строк.
	InsertActions(ctx context.Context, actions []*model.PhotoAction) (int64, error)
	// CountActionsByUser возвращает количество действий пользователя.
	CountActionsByUser(ctx context.Context, uid uuid.UUID) (int, error)
	// HasPhoto отвечает, есть ли у пользователя хотя бы одно действие
	// над фотографией с данным отпечатком (запрос по индексу idx_photo_md5).
	HasPhoto(ctx context.Context, uid uuid.UUID, photoMD5 string) (bool, error)
}

// syncRepo — реализация SyncRepository.
type syncRepo struct {
	db DBTX
}

// NewSyncRepository создаёт репозиторий синхронизации.
func NewSyncRepository(db DBTX) SyncRepository {
	return &syncRepo{db: db}
}

func (r *syncRepo) CreateSession(ctx context.Context, s *model.SyncSession) error {
	query := `
		INSERT INTO sync_session_logs (session_id, uid, mode, deleted_count, saved_bytes, start_time, device_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		s.SessionID, s.UID, s.Mode, s.DeletedCount, s.SavedBytes, s.StartTime, s.DeviceID,
	).Scan(&s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Клиент повторил уже зафиксированный session_id — fail-closed
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания сводки сессии: %w", err)
	}
	return nil
}

func (r *syncRepo) GetSession(ctx context.Context, sessionID string) (*model.SyncSession, error) {
	query := `
		SELECT session_id, uid, mode, deleted_count, saved_bytes, start_time, device_id, created_at
		FROM sync_session_logs
		WHERE session_id = $1`

	s := &model.SyncSession{}
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&s.SessionID, &s.UID, &s.Mode, &s.DeletedCount, &s.SavedBytes,
		&s.StartTime, &s.DeviceID, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения сводки сессии: %w", err)
	}
	return s, nil
}

func (r *syncRepo) InsertActions(ctx context.Context, actions []*model.PhotoAction) (int64, error) {
	if len(actions) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(actions))
	for i, a := range actions {
		rows[i] = []any{a.UID, a.PhotoMD5, a.ActionType, a.ActionSource}
	}

	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"sync_photo_actions"},
		[]string{"uid", "photo_md5", "action_type", "action_source"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка массовой вставки действий: %w", err)
	}
	return n, nil
}

func (r *syncRepo) CountActionsByUser(ctx context.Context, uid uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sync_photo_actions WHERE uid = $1`, uid,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта действий: %w", err)
	}
	return count, nil
}

func (r *syncRepo) HasPhoto(ctx context.Context, uid uuid.UUID, photoMD5 string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM sync_photo_actions WHERE uid = $1 AND photo_md5 = $2
		)`, uid, photoMD5,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки отпечатка: %w", err)
	}
	return exists, nil
}
