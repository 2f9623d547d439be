// handler.go — основной обработчик API, реализующий routes.ServerInterface.
// Объединяет health и бизнес-обработчики, переводит ошибки сервисов в HTTP-ответы.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/jira-bridge/internal/api/errors"
	"github.com/bigkaa/jira-bridge/internal/api/routes"
	"github.com/bigkaa/jira-bridge/internal/domain/model"
	"github.com/bigkaa/jira-bridge/internal/jira"
	"github.com/bigkaa/jira-bridge/internal/service"
)

// ConnectionOperations — операции над подключениями (service.ConnectionService).
type ConnectionOperations interface {
	Save(ctx context.Context, connectionID string) (*model.ConnectionStatus, error)
	Status(ctx context.Context, connectionID string) *model.ConnectionStatus
}

// JiraOperations — операции Jira (service.JiraService).
type JiraOperations interface {
	Projects(ctx context.Context, connectionID string) ([]model.Project, error)
	Issues(ctx context.Context, connectionID string, query model.IssueQuery) ([]model.Issue, error)
	IssueTypes(ctx context.Context, connectionID, projectID string) ([]model.IssueType, error)
	CreateIssue(ctx context.Context, connectionID string, req model.CreateIssueRequest) (*model.CreateIssueResult, error)
	History(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error)
}

// APIHandler — основной обработчик API Jira Bridge.
type APIHandler struct {
	health      *HealthHandler
	connections ConnectionOperations
	jira        JiraOperations
	openapiJSON []byte
	logger      *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// openapiJSON — валидированный OpenAPI документ для /api/openapi.json.
func NewAPIHandler(
	health *HealthHandler,
	connections ConnectionOperations,
	jiraOps JiraOperations,
	openapiJSON []byte,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:      health,
		connections: connections,
		jira:        jiraOps,
		openapiJSON: openapiJSON,
		logger:      logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// GetRoot — информация о сервисе.
func (h *APIHandler) GetRoot(w http.ResponseWriter, r *http.Request) {
	h.health.GetRoot(w, r)
}

// GetHealth — состояние сервиса и зависимостей.
func (h *APIHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.health.GetHealth(w, r)
}

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// GetOpenAPI — OpenAPI документ.
func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiJSON)
}

// ParamErrorHandler — ответ на ошибку разбора path/query параметров.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, err.Error())
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var upErr *jira.UpstreamError

	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrConnectionNotFound):
		apierrors.ConnectionNotFound(w, err.Error())
	case errors.Is(err, service.ErrCloudIDMissing):
		apierrors.CloudIDMissing(w, service.ErrCloudIDMissing.Error())
	case errors.Is(err, service.ErrNangoUnavailable):
		h.logger.Error("Nango недоступен",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.NangoUnavailable(w, "Nango недоступен")
	case errors.As(err, &upErr):
		if upErr.StatusCode == http.StatusBadRequest || upErr.StatusCode == http.StatusNotFound {
			apierrors.JiraRejected(w, upErr.StatusCode, upErr.Error())
			return
		}
		h.logger.Error("Ошибка Jira",
			slog.String("path", r.URL.Path),
			slog.Int("jira_status", upErr.StatusCode),
			slog.String("error", upErr.Message),
		)
		apierrors.JiraUpstreamError(w, upErr.Error())
	default:
		h.logger.Error("Внутренняя ошибка",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

var _ routes.ServerInterface = (*APIHandler)(nil)
