package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
)

const connectionColumns = `connection_id, provider, cloud_id, account_id,
	user_email, user_name, created_at, updated_at`

// ConnectionRepository — сводки подключений Nango.
type ConnectionRepository interface {
	// Upsert создаёт запись или обновляет все поля, кроме created_at.
	// Возвращает сохранённое состояние.
	Upsert(ctx context.Context, conn *model.Connection) (*model.Connection, error)
	// GetByID возвращает запись по connection_id или ErrNotFound.
	GetByID(ctx context.Context, connectionID string) (*model.Connection, error)
}

type connectionRepo struct {
	db DBTX
}

// NewConnectionRepository создаёт репозиторий подключений.
func NewConnectionRepository(db DBTX) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) Upsert(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	provider := conn.Provider
	if provider == "" {
		provider = model.ProviderJira
	}

	query := fmt.Sprintf(`
		INSERT INTO connections (connection_id, provider, cloud_id, account_id,
			user_email, user_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (connection_id) DO UPDATE SET
			provider   = EXCLUDED.provider,
			cloud_id   = EXCLUDED.cloud_id,
			account_id = EXCLUDED.account_id,
			user_email = EXCLUDED.user_email,
			user_name  = EXCLUDED.user_name,
			updated_at = NOW()
		RETURNING %s`, connectionColumns)

	saved, err := scanConnection(r.db.QueryRow(ctx, query,
		conn.ConnectionID, provider, conn.CloudID, conn.AccountID,
		conn.UserEmail, conn.UserName,
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения подключения %s: %w", conn.ConnectionID, err)
	}
	return saved, nil
}

func (r *connectionRepo) GetByID(ctx context.Context, connectionID string) (*model.Connection, error) {
	query := fmt.Sprintf(`SELECT %s FROM connections WHERE connection_id = $1`, connectionColumns)

	conn, err := scanConnection(r.db.QueryRow(ctx, query, connectionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения подключения: %w", err)
	}
	return conn, nil
}

func scanConnection(row pgx.Row) (*model.Connection, error) {
	c := &model.Connection{}
	err := row.Scan(
		&c.ConnectionID, &c.Provider, &c.CloudID, &c.AccountID,
		&c.UserEmail, &c.UserName, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
