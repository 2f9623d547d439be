package openapi

import (
	"context"
	"encoding/json"
	"testing"
)

// TestLoad проверяет, что встроенный документ валиден и содержит все маршруты.
func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}

	paths := []string{
		"/",
		"/health",
		"/health/live",
		"/health/ready",
		"/metrics",
		"/api/openapi.json",
		"/api/connection",
		"/api/connection/{connectionId}",
		"/api/projects/{connectionId}",
		"/api/issues/{connectionId}",
		"/api/issues/{connectionId}/history",
		"/api/issue-types/{connectionId}/{projectId}",
	}
	for _, p := range paths {
		if doc.Paths.Find(p) == nil {
			t.Errorf("в документе нет пути %s", p)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(context.Background())
	if err != nil {
		t.Fatalf("JSON ошибка: %v", err)
	}

	var parsed struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("невалидный JSON: %v", err)
	}
	if parsed.OpenAPI != "3.0.3" || parsed.Info.Title != "Jira Bridge API" {
		t.Errorf("документ = %+v", parsed)
	}
}
