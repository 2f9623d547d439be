// convert.go — преобразования доменных моделей в DTO и обратно.
package handlers

import (
	"github.com/bigkaa/jira-bridge/internal/api/routes"
	"github.com/bigkaa/jira-bridge/internal/domain/model"
)

func toConnectionStatus(s *model.ConnectionStatus) routes.ConnectionStatus {
	return routes.ConnectionStatus{
		Connected:    s.Connected,
		ConnectionId: model.StringPtr(s.ConnectionID),
		Provider:     s.Provider,
		CloudId:      s.CloudID,
		AccountId:    s.AccountID,
		UserEmail:    s.UserEmail,
		UserName:     s.UserName,
		Error:        s.Error,
	}
}

func toProject(p *model.Project) routes.Project {
	return routes.Project{
		Id:             p.ID,
		Key:            p.Key,
		Name:           p.Name,
		Url:            p.URL,
		ProjectTypeKey: p.ProjectTypeKey,
		WebUrl:         p.WebURL,
	}
}

func toIssue(i *model.Issue) routes.Issue {
	comments := make([]routes.IssueComment, 0, len(i.Comments))
	for _, c := range i.Comments {
		body := c.Body
		if body == nil {
			body = map[string]any{}
		}
		comments = append(comments, routes.IssueComment{
			Id:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Author: routes.CommentAuthor{
				AccountId:    c.Author.AccountID,
				Active:       c.Author.Active,
				DisplayName:  c.Author.DisplayName,
				EmailAddress: c.Author.EmailAddress,
			},
			Body: body,
		})
	}

	return routes.Issue{
		Id:          i.ID,
		Key:         i.Key,
		Summary:     i.Summary,
		IssueType:   i.IssueType,
		Status:      i.Status,
		Assignee:    i.Assignee,
		Url:         i.URL,
		WebUrl:      i.WebURL,
		ProjectId:   i.ProjectID,
		ProjectKey:  i.ProjectKey,
		ProjectName: i.ProjectName,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		Comments:    comments,
	}
}

func toIssueType(t *model.IssueType) routes.IssueType {
	return routes.IssueType{
		Id:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IconUrl:     t.IconURL,
		Subtask:     t.Subtask,
	}
}

func toIssueHistoryItem(h *model.IssueHistory) routes.IssueHistoryItem {
	return routes.IssueHistoryItem{
		Id:         h.ID,
		IssueId:    h.IssueID,
		IssueKey:   h.IssueKey,
		ProjectKey: h.ProjectKey,
		Summary:    h.Summary,
		CreatedAt:  h.CreatedAt,
	}
}

func fromCreateIssueRequest(r *routes.CreateIssueRequest) model.CreateIssueRequest {
	return model.CreateIssueRequest{
		ProjectKey:  r.ProjectKey,
		Summary:     r.Summary,
		Description: model.StringValue(r.Description),
		IssueType:   model.StringValue(r.IssueType),
		AssigneeID:  model.StringValue(r.AssigneeId),
		Labels:      r.Labels,
	}
}
