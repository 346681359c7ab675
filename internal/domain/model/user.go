package model

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись пользователя.
// Хранится в таблице users.
type User struct {
	// UID — UUID пользователя, генерируется при создании
	UID uuid.UUID
	// PhoneNumber — номер телефона в зашифрованном виде (уникален).
	// Открытый номер в эту структуру никогда не попадает.
	PhoneNumber string
	// Nickname — отображаемое имя (опционально)
	Nickname *string
	// AvatarURL — URL аватара (опционально)
	AvatarURL *string
	// IsPro — признак Pro-подписки
	IsPro bool
	// ProExpireAt — срок действия Pro-подписки
	ProExpireAt *time.Time
	// CurrentEnergy — текущий запас энергии (дневная квота бесплатного тарифа)
	CurrentEnergy int
	// TotalSavedBytes — накопительно освобождённое место в байтах
	TotalSavedBytes int64
	// TotalDeletedCount — накопительное количество удалённых фотографий
	TotalDeletedCount int
	// LastLoginAt — время последнего успешного логина
	LastLoginAt *time.Time
	// CreatedAt — время создания учётной записи
	CreatedAt time.Time
}
