// connection.go — обработчики /api/connection.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/bigkaa/jira-bridge/internal/api/errors"
	"github.com/bigkaa/jira-bridge/internal/api/routes"
)

// SaveConnection — POST /api/connection.
// Фронтенд вызывает после успешного OAuth в Nango Connect UI.
func (h *APIHandler) SaveConnection(w http.ResponseWriter, r *http.Request) {
	var req routes.ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	status, err := h.connections.Save(r.Context(), req.ConnectionId)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toConnectionStatus(status))
}

// GetConnectionStatus — GET /api/connection/{connectionId}. Всегда 200.
func (h *APIHandler) GetConnectionStatus(w http.ResponseWriter, r *http.Request, connectionId routes.ConnectionId) {
	status := h.connections.Status(r.Context(), connectionId)
	writeJSON(w, http.StatusOK, toConnectionStatus(status))
}
