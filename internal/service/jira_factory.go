package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
	"github.com/bigkaa/jira-bridge/internal/jira"
	"github.com/bigkaa/jira-bridge/internal/nango"
)

// ConnectionLookup — источник метаданных подключений (nango.Client).
type ConnectionLookup interface {
	GetConnection(ctx context.Context, connectionID string) (*nango.Connection, error)
}

// JiraAPI — операции Jira, доступные через прокси (jira.Client).
type JiraAPI interface {
	Myself(ctx context.Context) (*model.JiraUser, error)
	SearchProjects(ctx context.Context) ([]model.Project, error)
	SearchIssues(ctx context.Context, query model.IssueQuery) ([]model.Issue, error)
	IssueTypesForProject(ctx context.Context, projectID string) ([]model.IssueType, error)
	CreateIssue(ctx context.Context, req model.CreateIssueRequest) (*model.CreateIssueResult, error)
}

// JiraFactory создаёт клиент Jira для конкретного подключения.
type JiraFactory interface {
	ForConnection(conn *nango.Connection) (JiraAPI, error)
}

// ProxyJiraFactory строит клиенты Jira поверх прокси Nango.
type ProxyJiraFactory struct {
	nango *nango.Client
	// fallbackBrowseURL — база ссылок /browse, если Nango не вернул baseUrl
	fallbackBrowseURL string
}

// NewProxyJiraFactory создаёт фабрику клиентов Jira.
func NewProxyJiraFactory(nangoClient *nango.Client, fallbackBrowseURL string) *ProxyJiraFactory {
	return &ProxyJiraFactory{nango: nangoClient, fallbackBrowseURL: fallbackBrowseURL}
}

// ForConnection реализует JiraFactory.
func (f *ProxyJiraFactory) ForConnection(conn *nango.Connection) (JiraAPI, error) {
	if conn.CloudID == "" {
		return nil, ErrCloudIDMissing
	}

	browse := conn.BaseURL
	if browse == "" {
		browse = f.fallbackBrowseURL
	}

	return jira.NewClient(
		f.nango.ProxyHTTPClient(conn.ConnectionID),
		f.nango.ProxyBaseURL(conn.CloudID),
		browse,
	)
}

// mapNangoError переводит ошибки nango-клиента в ошибки сервисного слоя.
func mapNangoError(err error) error {
	switch {
	case errors.Is(err, nango.ErrConnectionNotFound):
		return fmt.Errorf("%w: %v", ErrConnectionNotFound, err)
	case errors.Is(err, nango.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrNangoUnavailable, err)
	default:
		return err
	}
}

// mapJiraError оставляет *jira.UpstreamError как есть (статус Jira важен для API),
// транспортные ошибки прокси считаются недоступностью Nango.
func mapJiraError(op string, err error) error {
	var upErr *jira.UpstreamError
	if errors.As(err, &upErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrNangoUnavailable, err)
}
