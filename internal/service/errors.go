// errors.go — ошибки бизнес-логики сервисного слоя.
// API-слой переводит их в HTTP-статусы в одном месте (handlers.writeServiceError).
package service

import "errors"

var (
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrConnectionNotFound — Nango не знает подключение.
	ErrConnectionNotFound = errors.New("подключение не найдено в Nango")
	// ErrCloudIDMissing — у подключения нет cloudId, адресовать Jira невозможно.
	ErrCloudIDMissing = errors.New("не удалось получить Jira Cloud ID")
	// ErrNangoUnavailable — Nango недоступен.
	ErrNangoUnavailable = errors.New("Nango недоступен")
)
