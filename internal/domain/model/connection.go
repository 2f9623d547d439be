// Пакет model — доменные модели Jira Bridge.
// Connection и IssueHistory хранятся в PostgreSQL, остальные модели
// получаются из Jira на каждый запрос и не персистятся.
package model

import "time"

// ProviderJira — провайдер интеграции, единственный поддерживаемый.
const ProviderJira = "jira"

// Connection — сводка подключения в таблице connections.
// Создаётся при первой успешной проверке в Nango, обновляется при каждой
// последующей и никогда не удаляется.
type Connection struct {
	// ConnectionID — идентификатор подключения в Nango (первичный ключ)
	ConnectionID string
	// Provider — провайдер ("jira")
	Provider string
	// CloudID — идентификатор тенанта Jira Cloud
	CloudID *string
	// AccountID — accountId пользователя Atlassian
	AccountID *string
	// UserEmail — email текущего пользователя (из /myself)
	UserEmail *string
	// UserName — отображаемое имя текущего пользователя
	UserName *string
	// CreatedAt — время первой регистрации
	CreatedAt time.Time
	// UpdatedAt — время последней проверки
	UpdatedAt time.Time
}

// ConnectionStatus — результат проверки подключения.
type ConnectionStatus struct {
	Connected    bool
	ConnectionID string
	Provider     string
	CloudID      *string
	AccountID    *string
	UserEmail    *string
	UserName     *string
	// Error — причина, по которой подключение не активно
	Error *string
}

// JiraUser — текущий пользователь Jira (/rest/api/3/myself).
type JiraUser struct {
	AccountID    string
	EmailAddress string
	DisplayName  string
	Active       bool
}

// IssueHistory — запись о созданной через Jira Bridge задаче.
type IssueHistory struct {
	// ID — UUID записи
	ID           string
	ConnectionID string
	IssueID      string
	IssueKey     string
	ProjectKey   string
	Summary      string
	CreatedAt    time.Time
}

// StringPtr возвращает указатель на s или nil для пустой строки.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue разыменовывает p, возвращая "" для nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
