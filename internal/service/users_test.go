package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/cozyclean/backend/internal/domain/model"
	"github.com/cozyclean/backend/internal/repository"
)

func newTestDirectory(users *fakeUserRepo, cfg *fakeAppConfig) *UserDirectory {
	return NewUserDirectory(users, cfg, discardLogger())
}

func TestUserDirectory_FindOrCreate_NewUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	dir := newTestDirectory(users, newFakeAppConfig())

	u, isNew, err := dir.FindOrCreateByEncryptedPhone(ctx, "enc-phone-1")
	if err != nil {
		t.Fatalf("FindOrCreateByEncryptedPhone: %v", err)
	}
	if !isNew {
		t.Error("Ожидался isNew=true для первого обращения")
	}
	if u.UID == uuid.Nil {
		t.Error("UID нового пользователя не присвоен")
	}
	if u.PhoneNumber != "enc-phone-1" {
		t.Errorf("PhoneNumber = %q, ожидалось enc-phone-1", u.PhoneNumber)
	}
	if u.CurrentEnergy != defaultFreeEnergy {
		t.Errorf("CurrentEnergy = %d, ожидалось %d", u.CurrentEnergy, defaultFreeEnergy)
	}
	if u.LastLoginAt == nil {
		t.Error("LastLoginAt не установлен при создании")
	}
}

func TestUserDirectory_FindOrCreate_ExistingUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	dir := newTestDirectory(users, newFakeAppConfig())

	first, _, err := dir.FindOrCreateByEncryptedPhone(ctx, "enc-phone-1")
	if err != nil {
		t.Fatalf("Первый логин: %v", err)
	}

	second, isNew, err := dir.FindOrCreateByEncryptedPhone(ctx, "enc-phone-1")
	if err != nil {
		t.Fatalf("Повторный логин: %v", err)
	}
	if isNew {
		t.Error("Ожидался isNew=false для повторного логина")
	}
	if second.UID != first.UID {
		t.Errorf("UID сменился между логинами: %s != %s", second.UID, first.UID)
	}
	if second.LastLoginAt == nil {
		t.Error("LastLoginAt не обновлён при повторном логине")
	}
}

func TestUserDirectory_FindOrCreate_EnergyFromAppConfig(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	cfg := newFakeAppConfig()
	if err := cfg.Set(ctx, ConfigKeyFreeEnergy, 120, ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	dir := newTestDirectory(users, cfg)

	u, _, err := dir.FindOrCreateByEncryptedPhone(ctx, "enc-phone-1")
	if err != nil {
		t.Fatalf("FindOrCreateByEncryptedPhone: %v", err)
	}
	if u.CurrentEnergy != 120 {
		t.Errorf("CurrentEnergy = %d, ожидалось 120 из app_config", u.CurrentEnergy)
	}
}

func TestUserDirectory_FindOrCreate_LostRace(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	dir := newTestDirectory(users, newFakeAppConfig())

	// Параллельный логин успел создать пользователя между нашим
	// неудачным поиском и вставкой
	winner := &model.User{UID: uuid.New(), PhoneNumber: "enc-phone-1"}
	users.getErr = repository.ErrNotFound
	if err := users.Create(ctx, winner); err != nil {
		t.Fatalf("Создание конкурента: %v", err)
	}

	u, isNew, err := dir.FindOrCreateByEncryptedPhone(ctx, "enc-phone-1")
	if err != nil {
		t.Fatalf("FindOrCreateByEncryptedPhone: %v", err)
	}
	if isNew {
		t.Error("Проигравший гонку не должен сообщать isNew=true")
	}
	if u.UID != winner.UID {
		t.Errorf("UID = %s, ожидался UID победителя гонки %s", u.UID, winner.UID)
	}
}

func TestUserDirectory_GetByID(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	dir := newTestDirectory(users, newFakeAppConfig())

	created, _, err := dir.FindOrCreateByEncryptedPhone(ctx, "enc-phone-1")
	if err != nil {
		t.Fatalf("FindOrCreateByEncryptedPhone: %v", err)
	}

	got, err := dir.GetByID(ctx, created.UID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UID != created.UID {
		t.Errorf("UID = %s, ожидался %s", got.UID, created.UID)
	}

	_, err = dir.GetByID(ctx, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Ожидалась ErrNotFound, получено: %v", err)
	}
}
