// dephealth.go — мониторинг зависимостей через topologymetrics SDK.
//
// Jira Bridge мониторит:
//   - PostgreSQL — SQL checker через существующий pgxpool (connection pool mode, critical)
//   - Nango — HTTP checker к /health (critical)
//
// Jira напрямую не мониторится: все запросы идут через прокси Nango,
// ошибки Jira обрабатываются в момент запроса.
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками
// (app_dependency_health, app_dependency_latency_seconds, app_dependency_status).
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// nangoHealthPath — health endpoint Nango.
const nangoHealthPath = "/health"

// DephealthConfig — параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения
	ServiceID string
	// Group — имя группы в метриках (JB_DEPHEALTH_GROUP)
	Group string
	// DB — *sql.DB, полученный из pgxpool через stdlib.OpenDBFromPool()
	DB *sql.DB
	// PostgresURL — URL PostgreSQL (для лейблов, не для подключения)
	PostgresURL string
	// NangoHost — базовый URL Nango
	NangoHost string
	// CheckInterval — интервал проверки (JB_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(cfg, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Тесты передают отдельный registry, чтобы не конфликтовать с глобальным.
func NewDephealthServiceWithRegisterer(cfg DephealthConfig, logger *slog.Logger, registerer prometheus.Registerer) (*DephealthService, error) {
	return newDephealthService(cfg, logger, dephealth.WithRegisterer(registerer))
}

func newDephealthService(cfg DephealthConfig, logger *slog.Logger, extraOpts ...dephealth.Option) (*DephealthService, error) {
	// TLS для https:// SDK включает сам по схеме URL
	nangoURL, err := nangoDependencyURL(cfg.NangoHost)
	if err != nil {
		return nil, err
	}

	opts := make([]dephealth.Option, 0, 3+len(extraOpts))
	opts = append(opts,
		dephealth.WithLogger(logger),
		// PostgreSQL — connection pool mode: проверка через адаптер pgxpool
		// отражает реальное состояние пула.
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.PostgresURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
		dephealth.HTTP("nango",
			dephealth.FromURL(nangoURL),
			dephealth.WithHTTPHealthPath(nangoHealthPath),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
	)
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// nangoDependencyURL приводит host Nango к виду scheme://host[:port] без пути.
func nangoDependencyURL(host string) (string, error) {
	parsed, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("некорректный URL Nango %q: %w", host, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("некорректный URL Nango %q: ожидается http или https", host)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("некорректный URL Nango %q: пустой host", host)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (PostgreSQL + Nango)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	health := ds.Health()
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен",
		slog.Any("last_health", health),
	)
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если все её endpoints ok.
// До первой проверки зависимость присутствует со значением false.
// До Start возвращает nil.
func (ds *DephealthService) Health() map[string]bool {
	details := ds.dh.HealthDetails()
	if details == nil {
		return nil
	}

	result := make(map[string]bool, len(details))
	for _, es := range details {
		healthy := es.Healthy != nil && *es.Healthy
		if prev, ok := result[es.Name]; ok {
			healthy = healthy && prev
		}
		result[es.Name] = healthy
	}
	return result
}
