// Пакет errors — конструкторы стандартных ошибок Jira Bridge.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeConnectionNotFound = "CONNECTION_NOT_FOUND"
	CodeCloudIDMissing     = "CLOUD_ID_MISSING"
	CodeNangoUnavailable   = "NANGO_UNAVAILABLE"
	CodeJiraRejected       = "JIRA_REJECTED"
	CodeJiraUpstreamError  = "JIRA_UPSTREAM_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 маршрут или ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// ConnectionNotFound — 404 Nango не знает подключение.
func ConnectionNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeConnectionNotFound, message)
}

// CloudIDMissing — 400 у подключения нет Jira Cloud ID.
func CloudIDMissing(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeCloudIDMissing, message)
}

// NangoUnavailable — 502 Nango недоступен.
func NangoUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeNangoUnavailable, message)
}

// JiraRejected — Jira отклонила запрос (400/404); статус передаётся как есть.
func JiraRejected(w http.ResponseWriter, statusCode int, message string) {
	WriteError(w, statusCode, CodeJiraRejected, message)
}

// JiraUpstreamError — 502 Jira вернула прочую ошибку.
func JiraUpstreamError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeJiraUpstreamError, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
