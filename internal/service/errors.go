// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrInvalidCredentials — неверный код подтверждения при логине.
	ErrInvalidCredentials = errors.New("неверный код подтверждения")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrDuplicateSession — session_id уже зафиксирован ранее.
	// Повторная загрузка не дедуплицируется — fail-closed.
	ErrDuplicateSession = errors.New("сессия с таким session_id уже существует")
	// ErrSyncFailed — сбой персистентности при загрузке батча.
	// Батч полностью откачен, детали хранилища наружу не передаются.
	ErrSyncFailed = errors.New("не удалось синхронизировать батч")
)
