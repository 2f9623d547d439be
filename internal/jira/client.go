// Пакет jira — клиент Jira Cloud REST API v3 поверх прокси Nango.
// Транспорт — andygrunwald/go-jira; ответы Jira переводятся
// в упрощённые модели (плоские проекты, задачи, типы задач).
package jira

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	jiraapi "github.com/andygrunwald/go-jira"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
)

// Поля задачи, запрашиваемые у /search/jql.
const (
	issueFields        = "summary,status,assignee,issuetype,project,created,updated"
	issueFieldsComment = issueFields + ",comment"
)

// UpstreamError — Jira (или прокси Nango) ответили статусом не 2xx.
type UpstreamError struct {
	// StatusCode — HTTP-статус ответа
	StatusCode int
	// Message — текст ошибки из тела ответа
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Jira вернула статус %d: %s", e.StatusCode, e.Message)
}

// Client — клиент Jira для одного подключения.
type Client struct {
	api    *jiraapi.Client
	mapper mapper
}

// NewClient создаёт клиент Jira.
// httpClient — клиент с транспортом прокси Nango (nango.Client.ProxyHTTPClient).
// baseURL — {nango}/proxy/ex/jira/{cloudId}/.
// browseBase — базовый URL для ссылок на задачи в браузере.
func NewClient(httpClient *http.Client, baseURL, browseBase string) (*Client, error) {
	api, err := jiraapi.NewClient(httpClient, baseURL)
	if err != nil {
		return nil, fmt.Errorf("создание клиента Jira для %s: %w", baseURL, err)
	}
	return &Client{
		api:    api,
		mapper: mapper{browseBase: browseBase},
	}, nil
}

// Myself возвращает текущего пользователя.
// GET rest/api/3/myself
func (c *Client) Myself(ctx context.Context) (*model.JiraUser, error) {
	var u userWire
	if err := c.do(ctx, http.MethodGet, "rest/api/3/myself", nil, &u); err != nil {
		return nil, fmt.Errorf("myself: %w", err)
	}
	return jiraUser(&u), nil
}

// SearchProjects возвращает первую страницу доступных проектов.
// GET rest/api/3/project/search?maxResults=50&expand=description
func (c *Client) SearchProjects(ctx context.Context) ([]model.Project, error) {
	q := url.Values{
		"maxResults": {strconv.Itoa(model.ProjectSearchMaxRows)},
		"expand":     {"description"},
	}

	var resp projectSearchResponse
	if err := c.do(ctx, http.MethodGet, "rest/api/3/project/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("project/search: %w", err)
	}
	return c.mapper.projects(resp), nil
}

// SearchIssues выполняет поиск задач по JQL, собранному из query.
// GET rest/api/3/search/jql?jql=...&maxResults=N&fields=...
func (c *Client) SearchIssues(ctx context.Context, query model.IssueQuery) ([]model.Issue, error) {
	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = model.DefaultMaxResults
	}

	fields := issueFields
	if query.IncludeComments {
		fields = issueFieldsComment
	}

	q := url.Values{
		"jql":        {BuildJQL(query.ProjectKey, query.JQL)},
		"maxResults": {strconv.Itoa(maxResults)},
		"fields":     {fields},
	}

	var resp issueSearchResponse
	if err := c.do(ctx, http.MethodGet, "rest/api/3/search/jql?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("search/jql: %w", err)
	}
	return c.mapper.issues(resp), nil
}

// IssueTypesForProject возвращает типы задач проекта.
// GET rest/api/3/issuetype/project?projectId=
func (c *Client) IssueTypesForProject(ctx context.Context, projectID string) ([]model.IssueType, error) {
	q := url.Values{"projectId": {projectID}}

	var types []jiraapi.IssueType
	if err := c.do(ctx, http.MethodGet, "rest/api/3/issuetype/project?"+q.Encode(), nil, &types); err != nil {
		return nil, fmt.Errorf("issuetype/project: %w", err)
	}
	return issueTypes(types), nil
}

// CreateIssue создаёт задачу.
// POST rest/api/3/issue
func (c *Client) CreateIssue(ctx context.Context, req model.CreateIssueRequest) (*model.CreateIssueResult, error) {
	var created jiraapi.Issue
	if err := c.do(ctx, http.MethodPost, "rest/api/3/issue", buildCreatePayload(req), &created); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &model.CreateIssueResult{
		ID:   created.ID,
		Key:  created.Key,
		Self: created.Self,
	}, nil
}

// do выполняет запрос и декодирует ответ в v.
// Статус не 2xx превращается в *UpstreamError с текстом из тела ответа.
func (c *Client) do(ctx context.Context, method, path string, body, v any) error {
	req, err := c.api.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("создание запроса %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.api.Do(req, v)
	if resp != nil && resp.Response != nil {
		// go-jira закрывает тело только после успешного декодирования
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
			return &UpstreamError{
				StatusCode: resp.StatusCode,
				Message:    upstreamMessage(jiraapi.NewJiraError(resp, err)),
			}
		}
		return fmt.Errorf("запрос %s %s: %w", method, path, err)
	}
	return nil
}

// upstreamMessage извлекает из ошибки go-jira сообщения Jira (errorMessages, errors).
func upstreamMessage(err error) string {
	var jerr *jiraapi.Error
	if errors.As(err, &jerr) {
		msgs := make([]string, 0, len(jerr.ErrorMessages)+len(jerr.Errors))
		msgs = append(msgs, jerr.ErrorMessages...)
		for _, field := range slices.Sorted(maps.Keys(jerr.Errors)) {
			msgs = append(msgs, field+": "+jerr.Errors[field])
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return err.Error()
}
