package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cozyclean/backend/internal/domain/model"
	"github.com/cozyclean/backend/internal/repository"
)

// --- In-memory фейки слоя репозиториев для unit-тестов сервисов ---

// fakeUserRepo — потокобезопасная in-memory реализация UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	byPhone map[string]*model.User
	byID    map[uuid.UUID]*model.User

	// createErr подменяет результат следующего Create (разыгрывание гонки)
	createErr error
	// getErr подменяет результат GetByEncryptedPhone
	getErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byPhone: make(map[string]*model.User),
		byID:    make(map[uuid.UUID]*model.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return err
	}
	if _, ok := f.byPhone[u.PhoneNumber]; ok {
		return repository.ErrConflict
	}
	u.CreatedAt = time.Now().UTC()
	cp := *u
	f.byPhone[u.PhoneNumber] = &cp
	f.byID[u.UID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEncryptedPhone(_ context.Context, phone string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		err := f.getErr
		f.getErr = nil
		return nil, err
	}
	u, ok := f.byPhone[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, uid uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, uid uuid.UUID) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[uid]
	if !ok {
		return time.Time{}, repository.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return now, nil
}

func (f *fakeUserRepo) AddSyncTotals(_ context.Context, uid uuid.UUID, deleted int, saved int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.TotalDeletedCount += deleted
	u.TotalSavedBytes += saved
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, uid uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[uid]
	if !ok {
		return repository.ErrNotFound
	}
	delete(f.byPhone, u.PhoneNumber)
	delete(f.byID, uid)
	return nil
}

// fakeSyncRepo — in-memory реализация SyncRepository.
type fakeSyncRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.SyncSession
	actions  []*model.PhotoAction

	// insertErr подменяет результат следующего InsertActions
	insertErr error
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{sessions: make(map[string]*model.SyncSession)}
}

func (f *fakeSyncRepo) CreateSession(_ context.Context, s *model.SyncSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.SessionID]; ok {
		return repository.ErrConflict
	}
	s.CreatedAt = time.Now().UTC()
	cp := *s
	f.sessions[s.SessionID] = &cp
	return nil
}

func (f *fakeSyncRepo) GetSession(_ context.Context, id string) (*model.SyncSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSyncRepo) InsertActions(_ context.Context, actions []*model.PhotoAction) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		err := f.insertErr
		f.insertErr = nil
		return 0, err
	}
	f.actions = append(f.actions, actions...)
	return int64(len(actions)), nil
}

func (f *fakeSyncRepo) CountActionsByUser(_ context.Context, uid uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.actions {
		if a.UID == uid {
			n++
		}
	}
	return n, nil
}

func (f *fakeSyncRepo) HasPhoto(_ context.Context, uid uuid.UUID, md5 string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.actions {
		if a.UID == uid && a.PhotoMD5 == md5 {
			return true, nil
		}
	}
	return false, nil
}

// fakeAppConfig — in-memory реализация AppConfigRepository (только int-значения).
type fakeAppConfig struct {
	ints map[string]int
}

func newFakeAppConfig() *fakeAppConfig {
	return &fakeAppConfig{ints: make(map[string]int)}
}

func (f *fakeAppConfig) Get(_ context.Context, key string, dest any) error {
	v, ok := f.ints[key]
	if !ok {
		return repository.ErrNotFound
	}
	if p, ok := dest.(*int); ok {
		*p = v
	}
	return nil
}

func (f *fakeAppConfig) GetInt(ctx context.Context, key string) (int, error) {
	var v int
	if err := f.Get(ctx, key, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func (f *fakeAppConfig) Set(_ context.Context, key string, value any, _ string) error {
	if v, ok := value.(int); ok {
		f.ints[key] = v
	}
	return nil
}

// fakeAtomic — «транзакция», которая просто вызывает fn.
// Фейковые репозитории и так видят общие структуры; откат моделируется
// проверками в самих тестах.
type fakeAtomic struct {
	// beginErr — ошибка «начала транзакции»
	beginErr error
}

func (f *fakeAtomic) RunInTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}
