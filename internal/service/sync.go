// sync.go — процессор sync-upload: валидация батча, агрегация сводки
// и атомарная фиксация в одной транзакции.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cozyclean/backend/internal/domain/model"
	"github.com/cozyclean/backend/internal/repository"
)

// Источник действия по умолчанию, если клиент его не указал.
const defaultActionSource = "ANDROID"

// Atomic — выполнение функции в одной транзакции БД (реализуется repository.TxRunner).
type Atomic interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// ActionInput — одно действие над фотографией в составе батча.
type ActionInput struct {
	// MD5 — 32-символьный отпечаток содержимого
	MD5 string
	// ActionType — код действия (0=оставить, 1=удалить, 2=избранное, ...)
	ActionType int
	// ActionSource — платформа-источник (пусто → ANDROID)
	ActionSource string
}

// UploadInput — батч одной сессии синхронизации.
type UploadInput struct {
	// SessionID — идентификатор сессии, сгенерированный клиентом (1..64 символа)
	SessionID string
	// Mode — режим уборки
	Mode int
	// SavedBytes — освобождено байт за сессию (опционально)
	SavedBytes int64
	// StartTime — время начала сессии на устройстве (опционально)
	StartTime *time.Time
	// DeviceID — идентификатор устройства (опционально, до 64 символов)
	DeviceID *string
	// Actions — действия батча (может быть пустым)
	Actions []ActionInput
}

// SyncService — ядро протокола sync-upload.
//
// Одна загрузка = одна транзакция: сводка сессии, все действия и
// обновление накопительных счётчиков пользователя фиксируются
// атомарно — либо всё, либо ничего.
type SyncService struct {
	runner     Atomic
	logger     *slog.Logger
	maxActions int

	// Фабрики транзакционных репозиториев; подменяются в тестах.
	newSyncRepo func(repository.DBTX) repository.SyncRepository
	newUserRepo func(repository.DBTX) repository.UserRepository
}

// NewSyncService создаёт процессор синхронизации.
// maxActions — защитный потолок размера батча.
func NewSyncService(runner Atomic, maxActions int, logger *slog.Logger) *SyncService {
	return &SyncService{
		runner:      runner,
		logger:      logger.With(slog.String("component", "sync_service")),
		maxActions:  maxActions,
		newSyncRepo: repository.NewSyncRepository,
		newUserRepo: repository.NewUserRepository,
	}
}

// Upload валидирует и атомарно фиксирует батч действий пользователя uid.
// Возвращает количество синхронизированных действий.
//
// Ошибки: ErrValidation (некорректные поля, ничего не записано),
// ErrDuplicateSession (session_id уже зафиксирован), ErrSyncFailed
// (любой другой сбой персистентности; батч откачен целиком).
func (s *SyncService) Upload(ctx context.Context, uid uuid.UUID, in UploadInput) (int, error) {
	if err := s.validate(in); err != nil {
		return 0, err
	}

	deletedCount := 0
	for _, a := range in.Actions {
		if a.ActionType == model.ActionDelete {
			deletedCount++
		}
	}

	session := &model.SyncSession{
		SessionID:    in.SessionID,
		UID:          uid,
		Mode:         int16(in.Mode),
		DeletedCount: deletedCount,
		SavedBytes:   in.SavedBytes,
		StartTime:    in.StartTime,
		DeviceID:     in.DeviceID,
	}

	actions := make([]*model.PhotoAction, len(in.Actions))
	for i, a := range in.Actions {
		source := a.ActionSource
		if source == "" {
			source = defaultActionSource
		}
		actions[i] = &model.PhotoAction{
			UID:          uid,
			PhotoMD5:     a.MD5,
			ActionType:   int16(a.ActionType),
			ActionSource: source,
		}
	}

	err := s.runner.RunInTx(ctx, func(tx pgx.Tx) error {
		syncs := s.newSyncRepo(tx)
		users := s.newUserRepo(tx)

		if err := syncs.CreateSession(ctx, session); err != nil {
			return err
		}
		if _, err := syncs.InsertActions(ctx, actions); err != nil {
			return err
		}
		return users.AddSyncTotals(ctx, uid, deletedCount, in.SavedBytes)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, ErrDuplicateSession
		}
		// Детали ошибки хранилища остаются в логах, наружу — только ErrSyncFailed
		s.logger.Error("Сбой фиксации sync-батча",
			slog.String("uid", uid.String()),
			slog.String("session_id", in.SessionID),
			slog.String("error", err.Error()),
		)
		return 0, ErrSyncFailed
	}

	s.logger.Info("Батч синхронизирован",
		slog.String("uid", uid.String()),
		slog.String("session_id", in.SessionID),
		slog.Int("synced_count", len(actions)),
		slog.Int("deleted_count", deletedCount),
	)
	return len(actions), nil
}

// validate проверяет поля батча до начала транзакции.
func (s *SyncService) validate(in UploadInput) error {
	if in.SessionID == "" {
		return fmt.Errorf("%w: session_id обязателен", ErrValidation)
	}
	if len(in.SessionID) > 64 {
		return fmt.Errorf("%w: session_id длиннее 64 символов", ErrValidation)
	}
	// mode и action_type хранятся в SMALLINT: значения за его пределами
	// отклоняются до преобразования в int16
	if in.Mode < 0 || in.Mode > math.MaxInt16 {
		return fmt.Errorf("%w: mode вне допустимого диапазона 0..%d", ErrValidation, math.MaxInt16)
	}
	if in.SavedBytes < 0 {
		return fmt.Errorf("%w: saved_bytes не может быть отрицательным", ErrValidation)
	}
	if in.DeviceID != nil && len(*in.DeviceID) > 64 {
		return fmt.Errorf("%w: device_id длиннее 64 символов", ErrValidation)
	}
	if len(in.Actions) > s.maxActions {
		return fmt.Errorf("%w: батч содержит %d действий, максимум %d", ErrValidation, len(in.Actions), s.maxActions)
	}

	for i, a := range in.Actions {
		if !isHexMD5(a.MD5) {
			return fmt.Errorf("%w: actions[%d].md5 должен содержать ровно 32 hex-символа", ErrValidation, i)
		}
		if a.ActionType < 0 || a.ActionType > math.MaxInt16 {
			return fmt.Errorf("%w: actions[%d].action_type вне допустимого диапазона 0..%d", ErrValidation, i, math.MaxInt16)
		}
		if len(a.ActionSource) > 10 {
			return fmt.Errorf("%w: actions[%d].action_source длиннее 10 символов", ErrValidation, i)
		}
	}
	return nil
}

// isHexMD5 проверяет, что строка — MD5-отпечаток: ровно 32 hex-символа.
// Проверка побайтовая, многобайтовые символы не проходят.
func isHexMD5(s string) bool {
	if len(s) != 32 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
