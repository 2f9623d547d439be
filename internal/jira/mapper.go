package jira

import (
	"strings"

	jiraapi "github.com/andygrunwald/go-jira"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
)

// --- Формат ответов Jira REST API v3 (только используемые поля) ---

type projectSearchResponse struct {
	Values []projectWire `json:"values"`
}

type projectWire struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	Self           string `json:"self"`
	ProjectTypeKey string `json:"projectTypeKey"`
}

type issueSearchResponse struct {
	Issues []issueWire `json:"issues"`
}

type issueWire struct {
	ID     string          `json:"id"`
	Key    string          `json:"key"`
	Self   string          `json:"self"`
	Fields issueFieldsWire `json:"fields"`
}

type issueFieldsWire struct {
	Summary   string        `json:"summary"`
	Status    *namedWire    `json:"status"`
	IssueType *namedWire    `json:"issuetype"`
	Assignee  *userWire     `json:"assignee"`
	Project   *projectWire  `json:"project"`
	Created   string        `json:"created"`
	Updated   string        `json:"updated"`
	Comment   *commentsWire `json:"comment"`
}

type namedWire struct {
	Name string `json:"name"`
}

type userWire struct {
	AccountID    *string `json:"accountId"`
	Active       *bool   `json:"active"`
	DisplayName  *string `json:"displayName"`
	EmailAddress *string `json:"emailAddress"`
}

type commentsWire struct {
	Comments []commentWire `json:"comments"`
}

type commentWire struct {
	ID      string         `json:"id"`
	Created string         `json:"created"`
	Updated string         `json:"updated"`
	Author  *userWire      `json:"author"`
	Body    map[string]any `json:"body"`
}

// --- Преобразование в модели Jira Bridge ---

// mapper переводит ответы Jira в плоские модели.
// browseBase — базовый URL для ссылок {browseBase}/browse/{key}.
type mapper struct {
	browseBase string
}

func (m mapper) webURL(key string) string {
	return strings.TrimRight(m.browseBase, "/") + "/browse/" + key
}

func (m mapper) project(p projectWire) model.Project {
	typeKey := p.ProjectTypeKey
	if typeKey == "" {
		typeKey = model.DefaultProjectType
	}
	return model.Project{
		ID:             p.ID,
		Key:            p.Key,
		Name:           p.Name,
		URL:            p.Self,
		ProjectTypeKey: typeKey,
		WebURL:         m.webURL(p.Key),
	}
}

func (m mapper) projects(resp projectSearchResponse) []model.Project {
	result := make([]model.Project, 0, len(resp.Values))
	for _, p := range resp.Values {
		result = append(result, m.project(p))
	}
	return result
}

func (m mapper) issue(w issueWire) model.Issue {
	f := w.Fields

	issue := model.Issue{
		ID:        w.ID,
		Key:       w.Key,
		Summary:   f.Summary,
		IssueType: model.DefaultIssueType,
		Status:    model.DefaultIssueStatus,
		URL:       w.Self,
		WebURL:    m.webURL(w.Key),
		CreatedAt: f.Created,
		UpdatedAt: f.Updated,
		Comments:  []model.IssueComment{},
	}

	if f.IssueType != nil && f.IssueType.Name != "" {
		issue.IssueType = f.IssueType.Name
	}
	if f.Status != nil && f.Status.Name != "" {
		issue.Status = f.Status.Name
	}
	if f.Assignee != nil && f.Assignee.DisplayName != nil {
		name := *f.Assignee.DisplayName
		issue.Assignee = &name
	}
	if f.Project != nil {
		issue.ProjectID = f.Project.ID
		issue.ProjectKey = f.Project.Key
		issue.ProjectName = f.Project.Name
	}
	if f.Comment != nil {
		for _, c := range f.Comment.Comments {
			issue.Comments = append(issue.Comments, comment(c))
		}
	}

	return issue
}

func (m mapper) issues(resp issueSearchResponse) []model.Issue {
	result := make([]model.Issue, 0, len(resp.Issues))
	for _, w := range resp.Issues {
		result = append(result, m.issue(w))
	}
	return result
}

func comment(c commentWire) model.IssueComment {
	author := model.CommentAuthor{
		Active:      true,
		DisplayName: model.DefaultAuthorName,
	}
	if a := c.Author; a != nil {
		author.AccountID = a.AccountID
		author.EmailAddress = a.EmailAddress
		if a.Active != nil {
			author.Active = *a.Active
		}
		if a.DisplayName != nil {
			author.DisplayName = *a.DisplayName
		}
	}

	body := c.Body
	if body == nil {
		body = map[string]any{}
	}

	return model.IssueComment{
		ID:        c.ID,
		CreatedAt: c.Created,
		UpdatedAt: c.Updated,
		Author:    author,
		Body:      body,
	}
}

func issueTypes(types []jiraapi.IssueType) []model.IssueType {
	result := make([]model.IssueType, 0, len(types))
	for _, it := range types {
		result = append(result, model.IssueType{
			ID:          it.ID,
			Name:        it.Name,
			Description: model.StringPtr(it.Description),
			IconURL:     model.StringPtr(it.IconURL),
			Subtask:     it.Subtask,
		})
	}
	return result
}

// jiraUser — ответ /myself. Без поля active пользователь считается активным.
func jiraUser(u *userWire) *model.JiraUser {
	user := &model.JiraUser{
		AccountID:    model.StringValue(u.AccountID),
		EmailAddress: model.StringValue(u.EmailAddress),
		DisplayName:  model.StringValue(u.DisplayName),
		Active:       true,
	}
	if u.Active != nil {
		user.Active = *u.Active
	}
	return user
}

// --- Тело запроса на создание задачи ---

type createIssuePayload struct {
	Fields createIssueFields `json:"fields"`
}

type createIssueFields struct {
	Project     keyRef     `json:"project"`
	Summary     string     `json:"summary"`
	IssueType   nameRef    `json:"issuetype"`
	Description *adfNode   `json:"description,omitempty"`
	Assignee    *accountID `json:"assignee,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
}

type keyRef struct {
	Key string `json:"key"`
}

type nameRef struct {
	Name string `json:"name"`
}

type accountID struct {
	AccountID string `json:"accountId"`
}

// buildCreatePayload переводит упрощённый запрос в формат POST /rest/api/3/issue.
// description, assignee и labels добавляются только если заданы.
func buildCreatePayload(req model.CreateIssueRequest) createIssuePayload {
	issueType := strings.TrimSpace(req.IssueType)
	if issueType == "" {
		issueType = model.DefaultIssueType
	}

	fields := createIssueFields{
		Project:   keyRef{Key: req.ProjectKey},
		Summary:   req.Summary,
		IssueType: nameRef{Name: issueType},
	}
	if req.Description != "" {
		fields.Description = plainTextDoc(req.Description)
	}
	if req.AssigneeID != "" {
		fields.Assignee = &accountID{AccountID: req.AssigneeID}
	}
	if len(req.Labels) > 0 {
		fields.Labels = req.Labels
	}

	return createIssuePayload{Fields: fields}
}
