// connection.go — проверка и регистрация подключений Nango.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/jira-bridge/internal/domain/model"
	"github.com/bigkaa/jira-bridge/internal/nango"
	"github.com/bigkaa/jira-bridge/internal/repository"
)

// Тексты ошибок для фронтенда. Подробности уходят только в лог.
const (
	connectionNotFoundMessage = "Connection not found in Nango"
	nangoUnavailableMessage   = "Nango is unavailable"
)

// ConnectionService — проверка подключений в Nango, сохранение сводок и
// разрешение connection_id → cloudId для операций Jira.
type ConnectionService struct {
	lookup ConnectionLookup
	jiras  JiraFactory
	repo   repository.ConnectionRepository
	cache  *CacheService
	logger *slog.Logger
}

// NewConnectionService создаёт сервис подключений.
func NewConnectionService(
	lookup ConnectionLookup,
	jiras JiraFactory,
	repo repository.ConnectionRepository,
	cache *CacheService,
	logger *slog.Logger,
) *ConnectionService {
	return &ConnectionService{
		lookup: lookup,
		jiras:  jiras,
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("component", "connection_service")),
	}
}

// Save проверяет подключение в Nango, дополняет его данными текущего
// пользователя Jira и сохраняет сводку.
func (s *ConnectionService) Save(ctx context.Context, connectionID string) (*model.ConnectionStatus, error) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return nil, fmt.Errorf("%w: не указан connectionId", ErrValidation)
	}

	conn, err := s.fetch(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	var user *model.JiraUser
	if conn.CloudID != "" {
		user = s.currentUser(ctx, conn)
	}

	record := &model.Connection{
		ConnectionID: connectionID,
		Provider:     model.ProviderJira,
		CloudID:      model.StringPtr(conn.CloudID),
		AccountID:    model.StringPtr(conn.AccountID),
	}
	if user != nil {
		record.UserEmail = model.StringPtr(user.EmailAddress)
		record.UserName = model.StringPtr(user.DisplayName)
	}

	saved, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("сохранение подключения: %w", err)
	}

	s.logger.Info("Подключение сохранено",
		slog.String("connection_id", connectionID),
		slog.Bool("has_cloud_id", conn.CloudID != ""),
		slog.Bool("has_user", user != nil),
	)

	return &model.ConnectionStatus{
		Connected:    true,
		ConnectionID: connectionID,
		Provider:     saved.Provider,
		CloudID:      saved.CloudID,
		AccountID:    saved.AccountID,
		UserEmail:    saved.UserEmail,
		UserName:     saved.UserName,
	}, nil
}

// Status возвращает состояние подключения. Ошибки не возвращаются:
// любая проблема отражается в Connected=false и Error.
func (s *ConnectionService) Status(ctx context.Context, connectionID string) *model.ConnectionStatus {
	status := &model.ConnectionStatus{
		ConnectionID: connectionID,
		Provider:     model.ProviderJira,
	}

	stored, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Не удалось прочитать сохранённое подключение",
				slog.String("connection_id", connectionID),
				slog.String("error", err.Error()),
			)
		}
		stored = nil
	}

	conn, err := s.fetch(ctx, connectionID)
	if err != nil {
		msg := connectionNotFoundMessage
		if !errors.Is(err, ErrConnectionNotFound) {
			msg = nangoUnavailableMessage
			s.logger.Warn("Не удалось проверить подключение в Nango",
				slog.String("connection_id", connectionID),
				slog.String("error", err.Error()),
			)
		}
		status.Error = &msg
		return status
	}

	status.Connected = true
	status.CloudID = model.StringPtr(conn.CloudID)
	status.AccountID = model.StringPtr(conn.AccountID)
	if stored != nil {
		status.UserEmail = stored.UserEmail
		status.UserName = stored.UserName
	}

	// Запись без email (проверка прошла до появления cloudId или /myself упал) — спрашиваем Jira
	if status.UserEmail == nil && conn.CloudID != "" {
		if user := s.currentUser(ctx, conn); user != nil {
			status.UserEmail = model.StringPtr(user.EmailAddress)
			status.UserName = model.StringPtr(user.DisplayName)
		}
	}

	return status
}

// Resolve возвращает метаданные подключения для операций Jira.
// Сначала кэш, затем Nango. Подключение без cloudId — ErrCloudIDMissing.
func (s *ConnectionService) Resolve(ctx context.Context, connectionID string) (*nango.Connection, error) {
	conn, ok := s.cache.Get(connectionID)
	if !ok {
		var err error
		conn, err = s.fetch(ctx, connectionID)
		if err != nil {
			return nil, err
		}
	}

	if conn.CloudID == "" {
		return nil, fmt.Errorf("%w: подключение %s", ErrCloudIDMissing, connectionID)
	}
	return conn, nil
}

// fetch запрашивает подключение в Nango и обновляет кэш.
func (s *ConnectionService) fetch(ctx context.Context, connectionID string) (*nango.Connection, error) {
	conn, err := s.lookup.GetConnection(ctx, connectionID)
	if err != nil {
		if errors.Is(err, nango.ErrConnectionNotFound) {
			s.cache.Delete(connectionID)
		}
		return nil, mapNangoError(err)
	}
	s.cache.Set(connectionID, conn)
	return conn, nil
}

// currentUser запрашивает /myself. Ошибка не прерывает операцию: данные пользователя необязательны.
func (s *ConnectionService) currentUser(ctx context.Context, conn *nango.Connection) *model.JiraUser {
	api, err := s.jiras.ForConnection(conn)
	if err != nil {
		s.logger.Warn("Не удалось создать клиент Jira",
			slog.String("connection_id", conn.ConnectionID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	user, err := api.Myself(ctx)
	if err != nil {
		s.logger.Warn("Не удалось получить текущего пользователя Jira",
			slog.String("connection_id", conn.ConnectionID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return user
}
