// Пакет config — загрузка и валидация конфигурации CozyClean Backend
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Имя сервиса для health endpoint и логов.
const ServiceName = "cozyclean-backend"

// Config содержит все параметры конфигурации CozyClean Backend.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- JWT ---

	// Симметричный секрет для подписи токенов
	JWTSecret string
	// Алгоритм подписи (HS256, HS384, HS512)
	JWTAlgorithm string
	// Время жизни токена по умолчанию
	JWTTTL time.Duration

	// --- Аутентификация ---

	// Mock-код подтверждения для логина (до подключения реального SMS-шлюза)
	LoginCode string
	// Лимит попыток логина в минуту на один клиентский адрес
	LoginRatePerMinute int

	// --- Шифрование номера телефона ---

	// Режим шифрования: aes (AES-256-GCM) или base64 (dev-заглушка)
	PhoneCryptMode string
	// Ключ шифрования (обязателен в режиме aes)
	PhoneCryptKey string

	// --- Лимиты ---

	// Глобальный лимит запросов в минуту на клиентский адрес
	RateLimitPerMinute int
	// Максимальное количество действий в одном sync-батче
	SyncMaxActions int

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// CC_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("CC_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("CC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("CC_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// CC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("CC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("CC_LOG_LEVEL: %w", err)
	}

	// CC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("CC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("CC_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// CC_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("CC_DB_HOST")
	if err != nil {
		return nil, err
	}

	// CC_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("CC_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("CC_DB_PORT: %w", err)
	}

	// CC_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("CC_DB_NAME")
	if err != nil {
		return nil, err
	}

	// CC_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("CC_DB_USER")
	if err != nil {
		return nil, err
	}

	// CC_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("CC_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// CC_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("CC_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("CC_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- JWT ---

	// CC_JWT_SECRET — обязательный
	cfg.JWTSecret, err = getEnvRequired("CC_JWT_SECRET")
	if err != nil {
		return nil, err
	}

	// CC_JWT_ALGORITHM — алгоритм подписи (по умолчанию HS256)
	cfg.JWTAlgorithm = getEnvDefault("CC_JWT_ALGORITHM", "HS256")
	switch cfg.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("CC_JWT_ALGORITHM: недопустимое значение %q, допустимые: HS256, HS384, HS512", cfg.JWTAlgorithm)
	}

	// CC_JWT_TTL — время жизни токена (по умолчанию 24h)
	cfg.JWTTTL, err = getEnvDuration("CC_JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("CC_JWT_TTL: %w", err)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("CC_JWT_TTL: значение должно быть положительным")
	}

	// --- Аутентификация ---

	// CC_LOGIN_CODE — mock-код подтверждения (по умолчанию "1234")
	cfg.LoginCode = getEnvDefault("CC_LOGIN_CODE", "1234")

	// CC_LOGIN_RATE_PER_MINUTE — лимит логинов в минуту (по умолчанию 3)
	cfg.LoginRatePerMinute, err = getEnvInt("CC_LOGIN_RATE_PER_MINUTE", 3)
	if err != nil {
		return nil, fmt.Errorf("CC_LOGIN_RATE_PER_MINUTE: %w", err)
	}
	if cfg.LoginRatePerMinute < 1 {
		return nil, fmt.Errorf("CC_LOGIN_RATE_PER_MINUTE: значение %d должно быть не меньше 1", cfg.LoginRatePerMinute)
	}

	// --- Шифрование номера телефона ---

	// CC_PHONE_CRYPT_MODE — режим шифрования (по умолчанию aes)
	cfg.PhoneCryptMode = getEnvDefault("CC_PHONE_CRYPT_MODE", "aes")
	if cfg.PhoneCryptMode != "aes" && cfg.PhoneCryptMode != "base64" {
		return nil, fmt.Errorf("CC_PHONE_CRYPT_MODE: недопустимое значение %q, допустимые: aes, base64", cfg.PhoneCryptMode)
	}

	// CC_PHONE_CRYPT_KEY — обязателен в режиме aes
	cfg.PhoneCryptKey = getEnvDefault("CC_PHONE_CRYPT_KEY", "")
	if cfg.PhoneCryptMode == "aes" && cfg.PhoneCryptKey == "" {
		return nil, fmt.Errorf("CC_PHONE_CRYPT_KEY: обязателен при CC_PHONE_CRYPT_MODE=aes")
	}

	// --- Лимиты ---

	// CC_RATE_LIMIT_PER_MINUTE — глобальный лимит запросов (по умолчанию 60)
	cfg.RateLimitPerMinute, err = getEnvInt("CC_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, fmt.Errorf("CC_RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if cfg.RateLimitPerMinute < 1 {
		return nil, fmt.Errorf("CC_RATE_LIMIT_PER_MINUTE: значение %d должно быть не меньше 1", cfg.RateLimitPerMinute)
	}

	// CC_SYNC_MAX_ACTIONS — максимальный размер батча (по умолчанию 1000)
	cfg.SyncMaxActions, err = getEnvInt("CC_SYNC_MAX_ACTIONS", 1000)
	if err != nil {
		return nil, fmt.Errorf("CC_SYNC_MAX_ACTIONS: %w", err)
	}
	if cfg.SyncMaxActions < 1 || cfg.SyncMaxActions > 10000 {
		return nil, fmt.Errorf("CC_SYNC_MAX_ACTIONS: значение %d вне допустимого диапазона 1-10000", cfg.SyncMaxActions)
	}

	// --- Graceful shutdown ---

	// CC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("CC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
