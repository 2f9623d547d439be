package model

// Значения по умолчанию для отсутствующих полей ответа Jira.
const (
	DefaultProjectType   = "software"
	DefaultIssueType     = "Task"
	DefaultIssueStatus   = "Unknown"
	DefaultAuthorName    = "Unknown"
	DefaultMaxResults    = 50
	MaxResultsLimit      = 100
	DefaultHistoryLimit  = 20
	HistoryLimitMaximum  = 100
	ProjectSearchMaxRows = 50
)

// Project — проект Jira в упрощённом виде.
type Project struct {
	ID   string
	Key  string
	Name string
	// URL — ссылка на ресурс REST API (поле self)
	URL            string
	ProjectTypeKey string
	// WebURL — ссылка на проект в браузере
	WebURL string
}

// Issue — задача Jira в упрощённом виде.
type Issue struct {
	ID        string
	Key       string
	Summary   string
	IssueType string
	Status    string
	// Assignee — отображаемое имя исполнителя, nil если не назначен
	Assignee    *string
	URL         string
	WebURL      string
	ProjectID   string
	ProjectKey  string
	ProjectName string
	// CreatedAt, UpdatedAt — метки времени в формате Jira, передаются как есть
	CreatedAt string
	UpdatedAt string
	Comments  []IssueComment
}

// IssueComment — комментарий к задаче.
type IssueComment struct {
	ID        string
	CreatedAt string
	UpdatedAt string
	Author    CommentAuthor
	// Body — тело комментария в Atlassian Document Format без изменений
	Body map[string]any
}

// CommentAuthor — автор комментария.
type CommentAuthor struct {
	AccountID    *string
	Active       bool
	DisplayName  string
	EmailAddress *string
}

// IssueType — тип задачи, доступный в проекте.
type IssueType struct {
	ID          string
	Name        string
	Description *string
	IconURL     *string
	Subtask     bool
}

// IssueQuery — параметры выборки задач.
type IssueQuery struct {
	// ProjectKey — фильтр по ключу проекта (опционально)
	ProjectKey string
	// JQL — произвольный фрагмент JQL (опционально)
	JQL string
	// MaxResults — размер страницы, 1..100
	MaxResults int
	// IncludeComments — запрашивать ли поле comment
	IncludeComments bool
}

// CreateIssueRequest — упрощённый запрос на создание задачи.
type CreateIssueRequest struct {
	ProjectKey  string
	Summary     string
	Description string
	// IssueType — имя типа задачи, по умолчанию Task
	IssueType  string
	AssigneeID string
	Labels     []string
}

// CreateIssueResult — ответ Jira на создание задачи.
type CreateIssueResult struct {
	ID   string
	Key  string
	Self string
}
