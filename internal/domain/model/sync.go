package model

import (
	"time"

	"github.com/google/uuid"
)

// Коды действий над фотографией (action_type).
// Клиент может присылать и другие значения — сервер трактует их как
// непрозрачные классификаторы, агрегируется только удаление.
const (
	// ActionKeep — фотография оставлена
	ActionKeep = 0
	// ActionDelete — фотография удалена (участвует в deleted_count)
	ActionDelete = 1
	// ActionFavorite — фотография добавлена в избранное
	ActionFavorite = 2
)

// SyncSession — сводка одной сессии синхронизации.
// Хранится в таблице sync_session_logs, создаётся ровно один раз
// на один вызов sync-upload и дальше не изменяется.
type SyncSession struct {
	// SessionID — идентификатор сессии, генерируется клиентом
	SessionID string
	// UID — владелец сессии
	UID uuid.UUID
	// Mode — режим уборки (0=быстрый, 1=глубокий, 2=путешествие во времени, ...)
	Mode int16
	// DeletedCount — количество действий с кодом удаления в батче
	DeletedCount int
	// SavedBytes — освобождено байт за сессию
	SavedBytes int64
	// StartTime — время начала сессии на устройстве (опционально)
	StartTime *time.Time
	// DeviceID — идентификатор устройства (опционально)
	DeviceID *string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}

// PhotoAction — одно действие пользователя над одной фотографией.
// Хранится в таблице sync_photo_actions. С сессией связано только
// общей транзакцией вставки: внешнего ключа на session_id нет.
type PhotoAction struct {
	// ActionID — автоинкрементный идентификатор (BIGSERIAL)
	ActionID int64
	// UID — владелец действия
	UID uuid.UUID
	// PhotoMD5 — 32-символьный отпечаток содержимого фотографии
	PhotoMD5 string
	// ActionType — код действия (см. Action*)
	ActionType int16
	// ActionSource — платформа-источник (ANDROID, IOS, ...)
	ActionSource string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}
