// health.go — обработчики health endpoints Jira Bridge.
// / и /health — информация о сервисе для фронтенда
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (PostgreSQL доступен)
// /metrics — Prometheus метрики
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/jira-bridge/internal/config"
)

const serviceName = "jira-bridge"

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status, message string)
}

// DatabaseProbe — быстрая проверка соединения с БД для /health.
type DatabaseProbe interface {
	Connected(ctx context.Context) bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	pgChecker   ReadinessChecker
	dbProbe     DatabaseProbe
	nangoHost   string
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// pgChecker — проверка PostgreSQL (может быть nil — readiness вернёт "fail").
// dbProbe — может быть nil, тогда database_connected=false.
func NewHealthHandler(pgChecker ReadinessChecker, dbProbe DatabaseProbe, nangoHost string) *HealthHandler {
	return &HealthHandler{
		pgChecker:   pgChecker,
		dbProbe:     dbProbe,
		nangoHost:   nangoHost,
		promHandler: promhttp.Handler(),
	}
}

type rootResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type healthResponse struct {
	Status            string `json:"status"`
	NangoHost         string `json:"nango_host"`
	DatabaseConnected bool   `json:"database_connected"`
}

type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		PostgreSQL healthCheckResult `json:"postgresql"`
	} `json:"checks"`
}

// GetRoot — GET /.
func (h *HealthHandler) GetRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Status:  "healthy",
		Service: "Jira Bridge API",
		Version: config.Version,
	})
}

// GetHealth — GET /health. Статус healthy даже без БД: флаг database_connected
// показывает фронтенду, работает ли сохранение подключений.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	connected := false
	if h.dbProbe != nil {
		connected = h.dbProbe.Connected(r.Context())
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:            "healthy",
		NangoHost:         h.nangoHost,
		DatabaseConnected: connected,
	})
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe. Проверяет PostgreSQL.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	if h.pgChecker != nil {
		pgStatus, pgMsg := h.pgChecker.CheckReady()
		resp.Checks.PostgreSQL = healthCheckResult{Status: pgStatus, Message: pgMsg}
	} else {
		resp.Checks.PostgreSQL = healthCheckResult{Status: statusFail, Message: "не инициализирован"}
	}

	resp.Status = overallStatus(resp.Checks.PostgreSQL.Status)

	status := http.StatusOK
	if resp.Status == statusFail {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

const statusFail = "fail"

// overallStatus: хотя бы один fail — fail, хотя бы один degraded — degraded, иначе ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == statusFail {
			return statusFail
		}
		if s == "degraded" {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return "degraded"
	}
	return "ok"
}
