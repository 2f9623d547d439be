// jira.go — обработчики проектов, задач и типов задач.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/bigkaa/jira-bridge/internal/api/errors"
	"github.com/bigkaa/jira-bridge/internal/api/routes"
	"github.com/bigkaa/jira-bridge/internal/domain/model"
)

// ListProjects — GET /api/projects/{connectionId}.
func (h *APIHandler) ListProjects(w http.ResponseWriter, r *http.Request, connectionId routes.ConnectionId) {
	projects, err := h.jira.Projects(r.Context(), connectionId)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]routes.Project, 0, len(projects))
	for i := range projects {
		items = append(items, toProject(&projects[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

// ListIssues — GET /api/issues/{connectionId}.
func (h *APIHandler) ListIssues(w http.ResponseWriter, r *http.Request, connectionId routes.ConnectionId, params routes.ListIssuesParams) {
	query := model.IssueQuery{
		ProjectKey:      model.StringValue(params.ProjectKey),
		JQL:             model.StringValue(params.Jql),
		IncludeComments: params.IncludeComments != nil && *params.IncludeComments,
	}
	if params.MaxResults != nil {
		if *params.MaxResults < 1 || *params.MaxResults > model.MaxResultsLimit {
			apierrors.ValidationError(w, "max_results должен быть от 1 до 100")
			return
		}
		query.MaxResults = *params.MaxResults
	}

	issues, err := h.jira.Issues(r.Context(), connectionId, query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]routes.Issue, 0, len(issues))
	for i := range issues {
		items = append(items, toIssue(&issues[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateIssue — POST /api/issues/{connectionId}.
func (h *APIHandler) CreateIssue(w http.ResponseWriter, r *http.Request, connectionId routes.ConnectionId) {
	var req routes.CreateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	created, err := h.jira.CreateIssue(r.Context(), connectionId, fromCreateIssueRequest(&req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, routes.CreateIssueResponse{
		Id:   created.ID,
		Key:  created.Key,
		Self: created.Self,
	})
}

// ListIssueHistory — GET /api/issues/{connectionId}/history.
func (h *APIHandler) ListIssueHistory(w http.ResponseWriter, r *http.Request, connectionId routes.ConnectionId, params routes.ListIssueHistoryParams) {
	limit := 0
	if params.Limit != nil {
		if *params.Limit < 1 || *params.Limit > model.HistoryLimitMaximum {
			apierrors.ValidationError(w, "limit должен быть от 1 до 100")
			return
		}
		limit = *params.Limit
	}

	history, err := h.jira.History(r.Context(), connectionId, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]routes.IssueHistoryItem, 0, len(history))
	for _, rec := range history {
		items = append(items, toIssueHistoryItem(rec))
	}
	writeJSON(w, http.StatusOK, items)
}

// ListIssueTypes — GET /api/issue-types/{connectionId}/{projectId}.
func (h *APIHandler) ListIssueTypes(w http.ResponseWriter, r *http.Request, connectionId routes.ConnectionId, projectId routes.ProjectId) {
	types, err := h.jira.IssueTypes(r.Context(), connectionId, projectId)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]routes.IssueType, 0, len(types))
	for i := range types {
		items = append(items, toIssueType(&types[i]))
	}
	writeJSON(w, http.StatusOK, items)
}
