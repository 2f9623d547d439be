package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
)

const issueHistoryColumns = `id, connection_id, issue_id, issue_key, project_key, summary, created_at`

// IssueHistoryRepository — история задач, созданных через Jira Bridge.
type IssueHistoryRepository interface {
	// Create сохраняет запись. Пустой ID заменяется новым UUID.
	Create(ctx context.Context, h *model.IssueHistory) (*model.IssueHistory, error)
	// ListByConnection возвращает последние записи подключения, новые первыми.
	ListByConnection(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error)
}

type issueHistoryRepo struct {
	db DBTX
}

// NewIssueHistoryRepository создаёт репозиторий истории задач.
func NewIssueHistoryRepository(db DBTX) IssueHistoryRepository {
	return &issueHistoryRepo{db: db}
}

func (r *issueHistoryRepo) Create(ctx context.Context, h *model.IssueHistory) (*model.IssueHistory, error) {
	id := h.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO issue_history (id, connection_id, issue_id, issue_key, project_key, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING %s`, issueHistoryColumns)

	saved := &model.IssueHistory{}
	err := r.db.QueryRow(ctx, query,
		id, h.ConnectionID, h.IssueID, h.IssueKey, h.ProjectKey, h.Summary,
	).Scan(
		&saved.ID, &saved.ConnectionID, &saved.IssueID, &saved.IssueKey,
		&saved.ProjectKey, &saved.Summary, &saved.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: запись истории %s", ErrConflict, id)
		}
		return nil, fmt.Errorf("ошибка сохранения истории задачи %s: %w", h.IssueKey, err)
	}
	return saved, nil
}

func (r *issueHistoryRepo) ListByConnection(ctx context.Context, connectionID string, limit int) ([]*model.IssueHistory, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM issue_history
		WHERE connection_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`, issueHistoryColumns)

	rows, err := r.db.Query(ctx, query, connectionID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории задач: %w", err)
	}
	defer rows.Close()

	var result []*model.IssueHistory
	for rows.Next() {
		h := &model.IssueHistory{}
		if err := rows.Scan(
			&h.ID, &h.ConnectionID, &h.IssueID, &h.IssueKey,
			&h.ProjectKey, &h.Summary, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения истории задач: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации истории задач: %w", err)
	}
	return result, nil
}
