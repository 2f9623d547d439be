package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
	"github.com/bigkaa/jira-bridge/internal/nango"
	"github.com/bigkaa/jira-bridge/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Nango ---

type mockLookup struct {
	getConnectionFn func(ctx context.Context, connectionID string) (*nango.Connection, error)
	calls           int
}

func (m *mockLookup) GetConnection(ctx context.Context, connectionID string) (*nango.Connection, error) {
	m.calls++
	if m.getConnectionFn != nil {
		return m.getConnectionFn(ctx, connectionID)
	}
	return nil, nango.ErrConnectionNotFound
}

// --- Jira ---

type mockJira struct {
	myselfFn         func(ctx context.Context) (*model.JiraUser, error)
	searchProjectsFn func(ctx context.Context) ([]model.Project, error)
	searchIssuesFn   func(ctx context.Context, query model.IssueQuery) ([]model.Issue, error)
	issueTypesFn     func(ctx context.Context, projectID string) ([]model.IssueType, error)
	createIssueFn    func(ctx context.Context, req model.CreateIssueRequest) (*model.CreateIssueResult, error)
}

func (m *mockJira) Myself(ctx context.Context) (*model.JiraUser, error) {
	if m.myselfFn != nil {
		return m.myselfFn(ctx)
	}
	return &model.JiraUser{AccountID: "acc-1", EmailAddress: "me@example.com", DisplayName: "Me"}, nil
}

func (m *mockJira) SearchProjects(ctx context.Context) ([]model.Project, error) {
	if m.searchProjectsFn != nil {
		return m.searchProjectsFn(ctx)
	}
	return []model.Project{}, nil
}

func (m *mockJira) SearchIssues(ctx context.Context, query model.IssueQuery) ([]model.Issue, error) {
	if m.searchIssuesFn != nil {
		return m.searchIssuesFn(ctx, query)
	}
	return []model.Issue{}, nil
}

func (m *mockJira) IssueTypesForProject(ctx context.Context, projectID string) ([]model.IssueType, error) {
	if m.issueTypesFn != nil {
		return m.issueTypesFn(ctx, projectID)
	}
	return []model.IssueType{}, nil
}

func (m *mockJira) CreateIssue(ctx context.Context, req model.CreateIssueRequest) (*model.CreateIssueResult, error) {
	if m.createIssueFn != nil {
		return m.createIssueFn(ctx, req)
	}
	return &model.CreateIssueResult{ID: "10001", Key: req.ProjectKey + "-1"}, nil
}

// mockFactory всегда отдаёт один и тот же mockJira.
type mockFactory struct {
	api *mockJira
	err error
}

func (f *mockFactory) ForConnection(conn *nango.Connection) (JiraAPI, error) {
	if f.err != nil {
		return nil, f.err
	}
	if conn.CloudID == "" {
		return nil, ErrCloudIDMissing
	}
	return f.api, nil
}

// --- Repositories ---

type mockConnectionRepo struct {
	upsertFn  func(ctx context.Context, conn *model.Connection) (*model.Connection, error)
	getByIDFn func(ctx context.Context, connectionID string) (*model.Connection, error)
}

func (m *mockConnectionRepo) Upsert(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, conn)
	}
	saved := *conn
	return &saved, nil
}

func (m *mockConnectionRepo) GetByID(ctx context.Context, connectionID string) (*model.Connection, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, connectionID)
	}
	return nil, repository.ErrNotFound
}

type mockHistoryRepo struct {
	createFn func(ctx context.Context, h *model.IssueHistory) (*model.IssueHistory, error)
	listFn   func(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error)
}

func (m *mockHistoryRepo) Create(ctx context.Context, h *model.IssueHistory) (*model.IssueHistory, error) {
	if m.createFn != nil {
		return m.createFn(ctx, h)
	}
	return h, nil
}

func (m *mockHistoryRepo) ListByConnection(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error) {
	if m.listFn != nil {
		return m.listFn(ctx, connectionID, limit)
	}
	return nil, nil
}

// connectionFound — GetConnection, возвращающий подключение с cloudId.
func connectionFound(cloudID string) func(context.Context, string) (*nango.Connection, error) {
	return func(_ context.Context, id string) (*nango.Connection, error) {
		return &nango.Connection{ConnectionID: id, Provider: "jira", CloudID: cloudID, AccountID: "acc-1"}, nil
	}
}
