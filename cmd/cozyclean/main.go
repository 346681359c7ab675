// Точка входа CozyClean backend — серверная часть мобильного приложения
// очистки фотогалереи. Загружает конфигурацию, подключается к PostgreSQL,
// применяет миграции, собирает сервисный слой и API handlers,
// запускает HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/cozyclean/backend/internal/api/handlers"
	"github.com/cozyclean/backend/internal/api/middleware"
	"github.com/cozyclean/backend/internal/config"
	"github.com/cozyclean/backend/internal/database"
	"github.com/cozyclean/backend/internal/phonecrypt"
	"github.com/cozyclean/backend/internal/repository"
	"github.com/cozyclean/backend/internal/server"
	"github.com/cozyclean/backend/internal/service"
	"github.com/cozyclean/backend/internal/token"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("CozyClean backend запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if cfg.PhoneCryptMode == "base64" {
		logger.Warn("CC_PHONE_CRYPT_MODE=base64 — номера телефонов только кодируются, не шифруются. Режим для разработки")
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Repositories
	userRepo := repository.NewUserRepository(pool)
	appConfigRepo := repository.NewAppConfigRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 6. Шифрование номеров и кодек токенов
	cipher, err := phonecrypt.New(cfg.PhoneCryptMode, cfg.PhoneCryptKey)
	if err != nil {
		logger.Error("Ошибка инициализации шифрования номеров", slog.String("error", err.Error()))
		os.Exit(1)
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTTTL)
	if err != nil {
		logger.Error("Ошибка инициализации JWT-кодека", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Стартовое значение дневной квоты энергии в app_config
	if err := seedFreeEnergy(ctx, appConfigRepo, logger); err != nil {
		logger.Error("Ошибка инициализации app_config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Services
	directory := service.NewUserDirectory(userRepo, appConfigRepo, logger)
	authSvc := service.NewAuthService(
		service.NewStaticCodeVerifier(cfg.LoginCode),
		cipher,
		directory,
		codec,
		logger,
	)
	syncSvc := service.NewSyncService(txRunner, cfg.SyncMaxActions, logger)

	// 9. API handlers и middleware
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool))
	apiHandler := handlers.NewAPIHandler(healthHandler, authSvc, syncSvc, directory, logger)
	bearerAuth := middleware.NewBearerAuth(codec, logger)

	// 10. Запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, bearerAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("CozyClean backend остановлен")
}

// seedFreeEnergy записывает дефолтную дневную квоту энергии в app_config,
// если ключ ещё не создан. Существующее значение не перезаписывается.
func seedFreeEnergy(ctx context.Context, repo repository.AppConfigRepository, logger *slog.Logger) error {
	_, err := repo.GetInt(ctx, service.ConfigKeyFreeEnergy)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := repo.Set(ctx, service.ConfigKeyFreeEnergy, 50, "Дневная квота энергии бесплатного тарифа"); err != nil {
		return err
	}
	logger.Info("app_config: создан ключ квоты энергии",
		slog.String("key", service.ConfigKeyFreeEnergy),
		slog.Int("value", 50),
	)
	return nil
}
