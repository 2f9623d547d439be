// Пакет routes — HTTP-контракт Jira Bridge: DTO, ServerInterface и
// регистрация маршрутов chi в стиле oapi-codegen chi-server.
// Структуры повторяют схемы из openapi.yaml (поля camelCase).
package routes

import "time"

// ConnectionRequest — тело POST /api/connection.
type ConnectionRequest struct {
	ConnectionId string `json:"connectionId"`
}

// ConnectionStatus — состояние подключения Jira.
type ConnectionStatus struct {
	Connected    bool    `json:"connected"`
	ConnectionId *string `json:"connectionId"`
	Provider     string  `json:"provider"`
	CloudId      *string `json:"cloudId"`
	AccountId    *string `json:"accountId"`
	UserEmail    *string `json:"userEmail"`
	UserName     *string `json:"userName"`
	Error        *string `json:"error"`
}

// Project — проект Jira.
type Project struct {
	Id             string `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	Url            string `json:"url"`
	ProjectTypeKey string `json:"projectTypeKey"`
	WebUrl         string `json:"webUrl"`
}

// CommentAuthor — автор комментария.
type CommentAuthor struct {
	AccountId    *string `json:"accountId"`
	Active       bool    `json:"active"`
	DisplayName  string  `json:"displayName"`
	EmailAddress *string `json:"emailAddress"`
}

// IssueComment — комментарий задачи. Body — документ ADF как есть.
type IssueComment struct {
	Id        string         `json:"id"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	Author    CommentAuthor  `json:"author"`
	Body      map[string]any `json:"body"`
}

// Issue — задача Jira в упрощённой схеме.
type Issue struct {
	Id          string         `json:"id"`
	Key         string         `json:"key"`
	Summary     string         `json:"summary"`
	IssueType   string         `json:"issueType"`
	Status      string         `json:"status"`
	Assignee    *string        `json:"assignee"`
	Url         string         `json:"url"`
	WebUrl      string         `json:"webUrl"`
	ProjectId   string         `json:"projectId"`
	ProjectKey  string         `json:"projectKey"`
	ProjectName string         `json:"projectName"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Comments    []IssueComment `json:"comments"`
}

// IssueType — тип задачи проекта.
type IssueType struct {
	Id          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IconUrl     *string `json:"iconUrl"`
	Subtask     bool    `json:"subtask"`
}

// CreateIssueRequest — тело POST /api/issues/{connectionId}.
type CreateIssueRequest struct {
	ProjectKey  string   `json:"projectKey"`
	Summary     string   `json:"summary"`
	Description *string  `json:"description,omitempty"`
	IssueType   *string  `json:"issueType,omitempty"`
	AssigneeId  *string  `json:"assigneeId,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// CreateIssueResponse — результат создания задачи.
type CreateIssueResponse struct {
	Id   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// IssueHistoryItem — задача, созданная через сервис.
type IssueHistoryItem struct {
	Id         string    `json:"id"`
	IssueId    string    `json:"issueId"`
	IssueKey   string    `json:"issueKey"`
	ProjectKey string    `json:"projectKey"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ConnectionId — path-параметр connectionId.
type ConnectionId = string

// ProjectId — path-параметр projectId.
type ProjectId = string

// ListIssuesParams — query-параметры GET /api/issues/{connectionId}.
type ListIssuesParams struct {
	ProjectKey      *string `form:"project_key,omitempty" json:"project_key,omitempty"`
	Jql             *string `form:"jql,omitempty" json:"jql,omitempty"`
	MaxResults      *int    `form:"max_results,omitempty" json:"max_results,omitempty"`
	IncludeComments *bool   `form:"include_comments,omitempty" json:"include_comments,omitempty"`
}

// ListIssueHistoryParams — query-параметры GET /api/issues/{connectionId}/history.
type ListIssueHistoryParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}
