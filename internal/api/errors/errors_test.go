package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{"validation", func(w http.ResponseWriter) { ValidationError(w, "m") }, http.StatusBadRequest, CodeValidationError},
		{"connection not found", func(w http.ResponseWriter) { ConnectionNotFound(w, "m") }, http.StatusNotFound, CodeConnectionNotFound},
		{"cloud id", func(w http.ResponseWriter) { CloudIDMissing(w, "m") }, http.StatusBadRequest, CodeCloudIDMissing},
		{"nango", func(w http.ResponseWriter) { NangoUnavailable(w, "m") }, http.StatusBadGateway, CodeNangoUnavailable},
		{"jira rejected", func(w http.ResponseWriter) { JiraRejected(w, http.StatusNotFound, "m") }, http.StatusNotFound, CodeJiraRejected},
		{"jira upstream", func(w http.ResponseWriter) { JiraUpstreamError(w, "m") }, http.StatusBadGateway, CodeJiraUpstreamError},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "m") }, http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("статус = %d, ожидался %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body errorBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("ошибка парсинга: %v", err)
			}
			if body.Error.Code != tt.wantCode || body.Error.Message != "m" {
				t.Errorf("тело = %+v", body)
			}
		})
	}
}
