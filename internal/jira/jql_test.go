package jira

import "testing"

func TestBuildJQL(t *testing.T) {
	tests := []struct {
		name       string
		projectKey string
		jql        string
		want       string
	}{
		{"без параметров", "", "", "created is not null ORDER BY created DESC"},
		{"только проект", "PROJ", "", "project = 'PROJ' ORDER BY created DESC"},
		{"только JQL", "", "status = Done", "status = Done ORDER BY created DESC"},
		{"проект и JQL", "PROJ", "assignee = currentUser()", "project = 'PROJ' AND assignee = currentUser() ORDER BY created DESC"},
		{"пробелы отбрасываются", "  PROJ ", "   ", "project = 'PROJ' ORDER BY created DESC"},
		{"экранирование кавычек", "A'B", "", `project = 'A\'B' ORDER BY created DESC`},
		{"экранирование слэша", `A\B`, "", `project = 'A\\B' ORDER BY created DESC`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildJQL(tt.projectKey, tt.jql); got != tt.want {
				t.Errorf("BuildJQL(%q, %q) = %q, ожидается %q", tt.projectKey, tt.jql, got, tt.want)
			}
		})
	}
}
