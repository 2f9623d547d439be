package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/jira-bridge/internal/api/routes"
	"github.com/bigkaa/jira-bridge/internal/domain/model"
	"github.com/bigkaa/jira-bridge/internal/jira"
	"github.com/bigkaa/jira-bridge/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Mocks ---

type mockConnections struct {
	saveFn   func(ctx context.Context, connectionID string) (*model.ConnectionStatus, error)
	statusFn func(ctx context.Context, connectionID string) *model.ConnectionStatus
}

func (m *mockConnections) Save(ctx context.Context, connectionID string) (*model.ConnectionStatus, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, connectionID)
	}
	return &model.ConnectionStatus{Connected: true, ConnectionID: connectionID, Provider: model.ProviderJira}, nil
}

func (m *mockConnections) Status(ctx context.Context, connectionID string) *model.ConnectionStatus {
	if m.statusFn != nil {
		return m.statusFn(ctx, connectionID)
	}
	return &model.ConnectionStatus{ConnectionID: connectionID, Provider: model.ProviderJira}
}

type mockJiraOps struct {
	projectsFn    func(ctx context.Context, connectionID string) ([]model.Project, error)
	issuesFn      func(ctx context.Context, connectionID string, query model.IssueQuery) ([]model.Issue, error)
	issueTypesFn  func(ctx context.Context, connectionID, projectID string) ([]model.IssueType, error)
	createIssueFn func(ctx context.Context, connectionID string, req model.CreateIssueRequest) (*model.CreateIssueResult, error)
	historyFn     func(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error)
}

func (m *mockJiraOps) Projects(ctx context.Context, connectionID string) ([]model.Project, error) {
	if m.projectsFn != nil {
		return m.projectsFn(ctx, connectionID)
	}
	return nil, nil
}

func (m *mockJiraOps) Issues(ctx context.Context, connectionID string, query model.IssueQuery) ([]model.Issue, error) {
	if m.issuesFn != nil {
		return m.issuesFn(ctx, connectionID, query)
	}
	return nil, nil
}

func (m *mockJiraOps) IssueTypes(ctx context.Context, connectionID, projectID string) ([]model.IssueType, error) {
	if m.issueTypesFn != nil {
		return m.issueTypesFn(ctx, connectionID, projectID)
	}
	return nil, nil
}

func (m *mockJiraOps) CreateIssue(ctx context.Context, connectionID string, req model.CreateIssueRequest) (*model.CreateIssueResult, error) {
	if m.createIssueFn != nil {
		return m.createIssueFn(ctx, connectionID, req)
	}
	return &model.CreateIssueResult{ID: "1", Key: "PROJ-1"}, nil
}

func (m *mockJiraOps) History(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, connectionID, limit)
	}
	return nil, nil
}

type stubChecker struct{ status, message string }

func (s stubChecker) CheckReady() (string, string) { return s.status, s.message }

type stubProbe bool

func (p stubProbe) Connected(context.Context) bool { return bool(p) }

// newTestRouter собирает роутер так же, как server.New.
func newTestRouter(conns ConnectionOperations, ops JiraOperations) http.Handler {
	health := NewHealthHandler(stubChecker{status: "ok"}, stubProbe(true), "https://api.nango.dev")
	h := NewAPIHandler(health, conns, ops, []byte(`{"openapi":"3.0.3"}`), testLogger())
	return routes.HandlerWithOptions(h, routes.ChiServerOptions{
		BaseRouter:       chi.NewRouter(),
		ErrorHandlerFunc: ParamErrorHandler,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("ошибка парсинга тела ошибки: %v", err)
	}
	return body.Error.Code
}

// --- Тесты ---

func TestSaveConnection(t *testing.T) {
	conns := &mockConnections{
		saveFn: func(_ context.Context, id string) (*model.ConnectionStatus, error) {
			if id != "conn-1" {
				t.Errorf("connectionID = %q", id)
			}
			return &model.ConnectionStatus{
				Connected:    true,
				ConnectionID: id,
				Provider:     model.ProviderJira,
				CloudID:      model.StringPtr("cloud-1"),
				UserEmail:    model.StringPtr("me@example.com"),
			}, nil
		},
	}
	rec := do(t, newTestRouter(conns, &mockJiraOps{}), http.MethodPost, "/api/connection", `{"connectionId":"conn-1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["connected"] != true || resp["cloudId"] != "cloud-1" || resp["userEmail"] != "me@example.com" {
		t.Errorf("ответ = %v", resp)
	}
	// Незаполненные поля сериализуются как null
	if v, ok := resp["userName"]; !ok || v != nil {
		t.Errorf("userName = %v (присутствует: %v), ожидался null", v, ok)
	}
}

func TestSaveConnection_BadJSON(t *testing.T) {
	rec := do(t, newTestRouter(&mockConnections{}, &mockJiraOps{}), http.MethodPost, "/api/connection", `{`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "VALIDATION_ERROR" {
		t.Errorf("статус = %d", rec.Code)
	}
}

func TestGetConnectionStatus_AlwaysOK(t *testing.T) {
	msg := "Connection not found in Nango"
	conns := &mockConnections{
		statusFn: func(_ context.Context, id string) *model.ConnectionStatus {
			return &model.ConnectionStatus{ConnectionID: id, Provider: model.ProviderJira, Error: &msg}
		},
	}
	rec := do(t, newTestRouter(conns, &mockJiraOps{}), http.MethodGet, "/api/connection/gone", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}
	var resp routes.ConnectionStatus
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Connected || model.StringValue(resp.Error) != msg || model.StringValue(resp.ConnectionId) != "gone" {
		t.Errorf("ответ = %+v", resp)
	}
}

// TestServiceErrorMapping проверяет единую политику ошибок API.
func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"валидация", fmt.Errorf("%w: x", service.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"нет подключения", fmt.Errorf("%w: x", service.ErrConnectionNotFound), http.StatusNotFound, "CONNECTION_NOT_FOUND"},
		{"нет cloudId", fmt.Errorf("%w: x", service.ErrCloudIDMissing), http.StatusBadRequest, "CLOUD_ID_MISSING"},
		{"Nango недоступен", fmt.Errorf("%w: x", service.ErrNangoUnavailable), http.StatusBadGateway, "NANGO_UNAVAILABLE"},
		{"Jira 400", fmt.Errorf("op: %w", &jira.UpstreamError{StatusCode: 400, Message: "bad"}), http.StatusBadRequest, "JIRA_REJECTED"},
		{"Jira 404", &jira.UpstreamError{StatusCode: 404, Message: "nope"}, http.StatusNotFound, "JIRA_REJECTED"},
		{"Jira 401", &jira.UpstreamError{StatusCode: 401, Message: "auth"}, http.StatusBadGateway, "JIRA_UPSTREAM_ERROR"},
		{"Jira 500", &jira.UpstreamError{StatusCode: 500, Message: "boom"}, http.StatusBadGateway, "JIRA_UPSTREAM_ERROR"},
		{"прочее", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := &mockJiraOps{
				projectsFn: func(context.Context, string) ([]model.Project, error) {
					return nil, tt.err
				},
			}
			rec := do(t, newTestRouter(&mockConnections{}, ops), http.MethodGet, "/api/projects/conn-1", "")

			if rec.Code != tt.wantStatus {
				t.Errorf("статус = %d, ожидался %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("код = %s, ожидался %s", code, tt.wantCode)
			}
		})
	}
}

func TestListProjects(t *testing.T) {
	ops := &mockJiraOps{
		projectsFn: func(_ context.Context, id string) ([]model.Project, error) {
			return []model.Project{{ID: "10000", Key: "PROJ", Name: "Project", URL: "u", ProjectTypeKey: "software", WebURL: "w"}}, nil
		},
	}
	rec := do(t, newTestRouter(&mockConnections{}, ops), http.MethodGet, "/api/projects/conn-1", "")

	var items []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0]["projectTypeKey"] != "software" || items[0]["webUrl"] != "w" {
		t.Errorf("ответ = %v", items)
	}
}

// TestListProjects_Empty проверяет, что пустой список — [], а не null.
func TestListProjects_Empty(t *testing.T) {
	rec := do(t, newTestRouter(&mockConnections{}, &mockJiraOps{}), http.MethodGet, "/api/projects/conn-1", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("тело = %s, ожидалось []", body)
	}
}

func TestListIssues_Params(t *testing.T) {
	var got model.IssueQuery
	ops := &mockJiraOps{
		issuesFn: func(_ context.Context, _ string, q model.IssueQuery) ([]model.Issue, error) {
			got = q
			return []model.Issue{{ID: "1", Key: "PROJ-1", Comments: []model.IssueComment{}}}, nil
		},
	}
	router := newTestRouter(&mockConnections{}, ops)

	rec := do(t, router, http.MethodGet, "/api/issues/conn-1?project_key=PROJ&jql=status%3DDone&max_results=10&include_comments=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	want := model.IssueQuery{ProjectKey: "PROJ", JQL: "status=Done", MaxResults: 10, IncludeComments: true}
	if got != want {
		t.Errorf("query = %+v, ожидалось %+v", got, want)
	}

	var items []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if c, ok := items[0]["comments"].([]any); !ok || len(c) != 0 {
		t.Errorf("comments = %v, ожидался пустой массив", items[0]["comments"])
	}
}

func TestListIssues_InvalidParams(t *testing.T) {
	ops := &mockJiraOps{
		issuesFn: func(context.Context, string, model.IssueQuery) ([]model.Issue, error) {
			t.Error("сервис не должен вызываться")
			return nil, nil
		},
	}
	router := newTestRouter(&mockConnections{}, ops)

	for _, q := range []string{"max_results=0", "max_results=101", "max_results=abc", "include_comments=maybe"} {
		rec := do(t, router, http.MethodGet, "/api/issues/conn-1?"+q, "")
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "VALIDATION_ERROR" {
			t.Errorf("%s: статус = %d", q, rec.Code)
		}
	}
}

func TestCreateIssue(t *testing.T) {
	var got model.CreateIssueRequest
	ops := &mockJiraOps{
		createIssueFn: func(_ context.Context, id string, req model.CreateIssueRequest) (*model.CreateIssueResult, error) {
			got = req
			return &model.CreateIssueResult{ID: "10001", Key: "PROJ-7", Self: "https://x/rest/api/3/issue/10001"}, nil
		},
	}
	body := `{"projectKey":"PROJ","summary":"S","description":"D","issueType":"Bug","assigneeId":"acc","labels":["a","b"]}`
	rec := do(t, newTestRouter(&mockConnections{}, ops), http.MethodPost, "/api/issues/conn-1", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	if got.ProjectKey != "PROJ" || got.IssueType != "Bug" || got.AssigneeID != "acc" || len(got.Labels) != 2 {
		t.Errorf("запрос = %+v", got)
	}

	var resp routes.CreateIssueResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Key != "PROJ-7" || resp.Self == "" {
		t.Errorf("ответ = %+v", resp)
	}
}

func TestListIssueHistory(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var gotLimit int
	ops := &mockJiraOps{
		historyFn: func(_ context.Context, _ string, limit int) ([]*model.IssueHistory, error) {
			gotLimit = limit
			return []*model.IssueHistory{{ID: "h1", IssueID: "1", IssueKey: "PROJ-1", ProjectKey: "PROJ", Summary: "S", CreatedAt: created}}, nil
		},
	}
	router := newTestRouter(&mockConnections{}, ops)

	rec := do(t, router, http.MethodGet, "/api/issues/conn-1/history?limit=5", "")
	if rec.Code != http.StatusOK || gotLimit != 5 {
		t.Fatalf("статус = %d, limit = %d", rec.Code, gotLimit)
	}
	var items []routes.IssueHistoryItem
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || !items[0].CreatedAt.Equal(created) {
		t.Errorf("ответ = %+v", items)
	}

	rec = do(t, router, http.MethodGet, "/api/issues/conn-1/history?limit=500", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=500: статус = %d, ожидался 400", rec.Code)
	}
}

func TestListIssueTypes(t *testing.T) {
	ops := &mockJiraOps{
		issueTypesFn: func(_ context.Context, id, projectID string) ([]model.IssueType, error) {
			if id != "conn-1" || projectID != "10000" {
				t.Errorf("id = %q, projectID = %q", id, projectID)
			}
			return []model.IssueType{{ID: "1", Name: "Task"}}, nil
		},
	}
	rec := do(t, newTestRouter(&mockConnections{}, ops), http.MethodGet, "/api/issue-types/conn-1/10000", "")

	var items []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0]["name"] != "Task" || items[0]["subtask"] != false {
		t.Errorf("ответ = %v", items)
	}
}

func TestGetOpenAPI(t *testing.T) {
	rec := do(t, newTestRouter(&mockConnections{}, &mockJiraOps{}), http.MethodGet, "/api/openapi.json", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "3.0.3") {
		t.Errorf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
}
