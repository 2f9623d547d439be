// Пакет config — загрузка и валидация конфигурации Jira Bridge
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Jira Bridge.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (по умолчанию 8000)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- Nango ---

	// Базовый URL Nango (по умолчанию https://api.nango.dev)
	NangoHost string
	// Секретный ключ Nango (обязательный)
	NangoSecretKey string
	// Provider config key интеграции Jira в Nango
	NangoProviderKey string
	// Таймаут запроса /connection/{id}
	NangoTimeout time.Duration
	// Таймаут проксированных запросов к Jira
	NangoProxyTimeout time.Duration
	// Путь к CA-сертификату для self-hosted Nango (опционально)
	NangoCACertPath string

	// --- Jira ---

	// Базовый URL для ссылок /browse/{key}, если Nango не вернул baseUrl
	JiraBrowseBaseURL string

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- Кэш метаданных подключений ---

	ConnectionCacheSize int
	ConnectionCacheTTL  time.Duration

	// --- CORS ---

	// URL фронтенда, всегда входит в список разрешённых origin
	FrontendURL string
	// Разрешённые origin
	CORSOrigins []string

	// --- JWT (опционально) ---

	// URL JWKS; пустое значение отключает проверку токенов на /api
	JWTJWKSURL string
	// Ожидаемый issuer (пустой — не проверяется)
	JWTIssuer string
	// Допустимое расхождение часов
	JWTLeeway time.Duration

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// JB_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("JB_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("JB_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("JB_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// JB_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("JB_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("JB_LOG_LEVEL: %w", err)
	}

	// JB_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("JB_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("JB_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("JB_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_HTTP_READ_TIMEOUT: %w", err)
	}

	cfg.HTTPWriteTimeout, err = getEnvDuration("JB_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_HTTP_WRITE_TIMEOUT: %w", err)
	}

	cfg.HTTPIdleTimeout, err = getEnvDuration("JB_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_HTTP_IDLE_TIMEOUT: %w", err)
	}

	cfg.ShutdownTimeout, err = getEnvDuration("JB_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Nango ---

	// JB_NANGO_HOST — адрес Nango (по умолчанию облачный)
	cfg.NangoHost = strings.TrimRight(getEnvDefault("JB_NANGO_HOST", "https://api.nango.dev"), "/")
	if err := validateURL(cfg.NangoHost); err != nil {
		return nil, fmt.Errorf("JB_NANGO_HOST: %w", err)
	}

	// JB_NANGO_SECRET_KEY — обязательный
	cfg.NangoSecretKey, err = getEnvRequired("JB_NANGO_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	cfg.NangoProviderKey = getEnvDefault("JB_NANGO_PROVIDER_KEY", "jira")

	// JB_NANGO_TIMEOUT — таймаут запроса метаданных подключения (по умолчанию 10s)
	cfg.NangoTimeout, err = getEnvDurationPositive("JB_NANGO_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_NANGO_TIMEOUT: %w", err)
	}

	// JB_NANGO_PROXY_TIMEOUT — таймаут запросов к Jira через прокси (по умолчанию 30s)
	cfg.NangoProxyTimeout, err = getEnvDurationPositive("JB_NANGO_PROXY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_NANGO_PROXY_TIMEOUT: %w", err)
	}

	cfg.NangoCACertPath = os.Getenv("JB_NANGO_CA_CERT_PATH")

	// --- Jira ---

	cfg.JiraBrowseBaseURL = strings.TrimRight(getEnvDefault("JB_JIRA_BROWSE_BASE_URL", "https://atlassian.net"), "/")
	if err := validateURL(cfg.JiraBrowseBaseURL); err != nil {
		return nil, fmt.Errorf("JB_JIRA_BROWSE_BASE_URL: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("JB_DB_HOST")
	if err != nil {
		return nil, err
	}

	cfg.DBPort, err = getEnvInt("JB_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("JB_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("JB_DB_NAME")
	if err != nil {
		return nil, err
	}

	cfg.DBUser, err = getEnvRequired("JB_DB_USER")
	if err != nil {
		return nil, err
	}

	cfg.DBPassword, err = getEnvRequired("JB_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("JB_DB_SSL_MODE", "disable")

	// --- Кэш ---

	cfg.ConnectionCacheSize, err = getEnvInt("JB_CONNECTION_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("JB_CONNECTION_CACHE_SIZE: %w", err)
	}
	if cfg.ConnectionCacheSize < 1 {
		return nil, fmt.Errorf("JB_CONNECTION_CACHE_SIZE: значение должно быть > 0")
	}

	cfg.ConnectionCacheTTL, err = getEnvDurationPositive("JB_CONNECTION_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("JB_CONNECTION_CACHE_TTL: %w", err)
	}

	// --- CORS ---

	cfg.FrontendURL = strings.TrimRight(getEnvDefault("JB_FRONTEND_URL", "http://localhost:5173"), "/")

	// JB_CORS_ORIGINS — список через запятую; по умолчанию фронтенд и локальные dev-серверы
	origins := parseCSV(os.Getenv("JB_CORS_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:5173",
			"http://localhost:3000",
			"http://127.0.0.1:5173",
			"http://127.0.0.1:3000",
		}
	}
	cfg.CORSOrigins = appendUnique([]string{cfg.FrontendURL}, origins...)

	// --- JWT ---

	cfg.JWTJWKSURL = os.Getenv("JB_JWT_JWKS_URL")
	cfg.JWTIssuer = os.Getenv("JB_JWT_ISSUER")

	cfg.JWTLeeway, err = getEnvDuration("JB_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_JWT_LEEWAY: %w", err)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("JB_DEPHEALTH_GROUP", "jira-bridge")

	cfg.DephealthCheckInterval, err = getEnvDurationPositive("JB_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JB_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// AuthEnabled сообщает, включена ли проверка JWT на /api.
func (c *Config) AuthEnabled() bool {
	return c.JWTJWKSURL != ""
}

// DatabaseURL возвращает postgres:// URL (для golang-migrate и topologymetrics).
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
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

// getEnvDurationPositive — как getEnvDuration, но значение должно быть > 0.
func getEnvDurationPositive(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
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

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пустые элементы и пробелы по краям отбрасываются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(values))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		v = strings.TrimRight(v, "/")
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}

// validateURL проверяет, что строка — абсолютный http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("некорректный URL %q: ожидается схема http или https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("некорректный URL %q: не указан хост", raw)
	}
	return nil
}
