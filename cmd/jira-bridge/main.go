// Точка входа Jira Bridge — интеграции с Jira Cloud через прокси Nango.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// создаёт клиент Nango, сервисный слой и API handlers, запускает
// topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/jira-bridge/internal/api/handlers"
	"github.com/bigkaa/jira-bridge/internal/api/middleware"
	"github.com/bigkaa/jira-bridge/internal/api/openapi"
	"github.com/bigkaa/jira-bridge/internal/config"
	"github.com/bigkaa/jira-bridge/internal/database"
	"github.com/bigkaa/jira-bridge/internal/nango"
	"github.com/bigkaa/jira-bridge/internal/repository"
	"github.com/bigkaa/jira-bridge/internal/server"
	"github.com/bigkaa/jira-bridge/internal/service"
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
	logger.Info("Jira Bridge запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("nango_host", cfg.NangoHost),
	)

	ctx := context.Background()

	// 3. OpenAPI контракт — невалидный документ означает битую сборку
	openapiJSON, err := openapi.JSON(ctx)
	if err != nil {
		logger.Error("Ошибка OpenAPI документа", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Подключение к PostgreSQL (pgxpool)
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 6. Клиент Nango
	nangoClient, err := nango.New(nango.Options{
		Host:              cfg.NangoHost,
		SecretKey:         cfg.NangoSecretKey,
		ProviderConfigKey: cfg.NangoProviderKey,
		Timeout:           cfg.NangoTimeout,
		ProxyTimeout:      cfg.NangoProxyTimeout,
		CACertPath:        cfg.NangoCACertPath,
	}, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента Nango", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Repositories
	connRepo := repository.NewConnectionRepository(pool)
	historyRepo := repository.NewIssueHistoryRepository(pool)

	// 8. Services
	cache := service.NewCacheService(cfg.ConnectionCacheSize, cfg.ConnectionCacheTTL)
	jiraFactory := service.NewProxyJiraFactory(nangoClient, cfg.JiraBrowseBaseURL)
	connSvc := service.NewConnectionService(nangoClient, jiraFactory, connRepo, cache, logger)
	jiraSvc := service.NewJiraService(connSvc, jiraFactory, historyRepo, logger)

	// 9. Health и API handlers
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker, pgChecker, cfg.NangoHost)
	apiHandler := handlers.NewAPIHandler(healthHandler, connSvc, jiraSvc, openapiJSON, logger)

	// 10. Middleware: metrics → logging → CORS → JWT (если настроен)
	middlewares := []func(next http.Handler) http.Handler{
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSOrigins),
	}
	if cfg.AuthEnabled() {
		jwtAuth, err := middleware.NewJWTAuth(cfg.JWTJWKSURL, cfg.JWTIssuer, cfg.JWTLeeway, logger)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		middlewares = append(middlewares, server.APIAuth(jwtAuth.Middleware(), "/api/openapi.json"))
		logger.Info("JWT middleware инициализирован",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		logger.Warn("JB_JWT_JWKS_URL не задана, /api доступен без аутентификации")
	}

	// 11. topologymetrics — мониторинг зависимостей (PostgreSQL + Nango)
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     "jira-bridge",
		Group:         cfg.DephealthGroup,
		DB:            pgDB,
		PostgresURL:   cfg.DatabaseURL(),
		NangoHost:     cfg.NangoHost,
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 12. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, apiHandler, middlewares...)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Jira Bridge остановлен")
}
