package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
	"github.com/bigkaa/jira-bridge/internal/nango"
	"github.com/bigkaa/jira-bridge/internal/repository"
)

// ConnectionResolver — разрешение connection_id в метаданные подключения.
// Реализуется ConnectionService.
type ConnectionResolver interface {
	Resolve(ctx context.Context, connectionID string) (*nango.Connection, error)
}

// JiraService — операции над проектами и задачами Jira от имени подключения.
type JiraService struct {
	connections ConnectionResolver
	jiras       JiraFactory
	history     repository.IssueHistoryRepository
	logger      *slog.Logger
}

// NewJiraService создаёт сервис операций Jira.
func NewJiraService(
	connections ConnectionResolver,
	jiras JiraFactory,
	history repository.IssueHistoryRepository,
	logger *slog.Logger,
) *JiraService {
	return &JiraService{
		connections: connections,
		jiras:       jiras,
		history:     history,
		logger:      logger.With(slog.String("component", "jira_service")),
	}
}

// Projects возвращает проекты Jira, доступные подключению.
func (s *JiraService) Projects(ctx context.Context, connectionID string) ([]model.Project, error) {
	api, err := s.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	projects, err := api.SearchProjects(ctx)
	if err != nil {
		return nil, mapJiraError("поиск проектов", err)
	}
	return projects, nil
}

// Issues выполняет поиск задач. MaxResults=0 — значение по умолчанию,
// допустимый диапазон 1..100.
func (s *JiraService) Issues(ctx context.Context, connectionID string, query model.IssueQuery) ([]model.Issue, error) {
	if query.MaxResults == 0 {
		query.MaxResults = model.DefaultMaxResults
	}
	if query.MaxResults < 1 || query.MaxResults > model.MaxResultsLimit {
		return nil, fmt.Errorf("%w: max_results должен быть от 1 до %d", ErrValidation, model.MaxResultsLimit)
	}

	api, err := s.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	issues, err := api.SearchIssues(ctx, query)
	if err != nil {
		return nil, mapJiraError("поиск задач", err)
	}
	return issues, nil
}

// IssueTypes возвращает типы задач проекта.
func (s *JiraService) IssueTypes(ctx context.Context, connectionID, projectID string) ([]model.IssueType, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: не указан projectId", ErrValidation)
	}

	api, err := s.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	types, err := api.IssueTypesForProject(ctx, projectID)
	if err != nil {
		return nil, mapJiraError("типы задач", err)
	}
	return types, nil
}

// CreateIssue создаёт задачу и записывает её в историю подключения.
// Сбой записи истории не влияет на результат.
func (s *JiraService) CreateIssue(ctx context.Context, connectionID string, req model.CreateIssueRequest) (*model.CreateIssueResult, error) {
	req.ProjectKey = strings.TrimSpace(req.ProjectKey)
	req.Summary = strings.TrimSpace(req.Summary)
	if req.ProjectKey == "" {
		return nil, fmt.Errorf("%w: не указан projectKey", ErrValidation)
	}
	if req.Summary == "" {
		return nil, fmt.Errorf("%w: не указан summary", ErrValidation)
	}

	api, err := s.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	created, err := api.CreateIssue(ctx, req)
	if err != nil {
		return nil, mapJiraError("создание задачи", err)
	}

	s.logger.Info("Задача создана",
		slog.String("connection_id", connectionID),
		slog.String("issue_key", created.Key),
	)

	if _, err := s.history.Create(ctx, &model.IssueHistory{
		ConnectionID: connectionID,
		IssueID:      created.ID,
		IssueKey:     created.Key,
		ProjectKey:   req.ProjectKey,
		Summary:      req.Summary,
	}); err != nil {
		s.logger.Warn("Не удалось записать историю созданной задачи",
			slog.String("connection_id", connectionID),
			slog.String("issue_key", created.Key),
			slog.String("error", err.Error()),
		)
	}

	return created, nil
}

// History возвращает задачи, созданные через сервис, новые первыми.
// limit=0 — значение по умолчанию, допустимый диапазон 1..100.
func (s *JiraService) History(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error) {
	if limit == 0 {
		limit = model.DefaultHistoryLimit
	}
	if limit < 1 || limit > model.HistoryLimitMaximum {
		return nil, fmt.Errorf("%w: limit должен быть от 1 до %d", ErrValidation, model.HistoryLimitMaximum)
	}

	items, err := s.history.ListByConnection(ctx, connectionID, limit)
	if err != nil {
		return nil, fmt.Errorf("история задач: %w", err)
	}
	return items, nil
}

func (s *JiraService) client(ctx context.Context, connectionID string) (JiraAPI, error) {
	conn, err := s.connections.Resolve(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	return s.jiras.ForConnection(conn)
}
