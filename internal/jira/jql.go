package jira

import "strings"

// defaultJQL — ограничение по умолчанию: /search/jql отклоняет неограниченные запросы.
const defaultJQL = "created is not null"

// jqlOrder — сортировка выдачи, добавляется всегда.
const jqlOrder = " ORDER BY created DESC"

// jqlQuoteReplacer экранирует значение для строкового литерала JQL в одинарных кавычках.
var jqlQuoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// BuildJQL собирает JQL-запрос из ключа проекта и произвольного фрагмента.
// Части объединяются через AND, результат сортируется по дате создания (новые первыми).
//
//	BuildJQL("PROJ", "")              → project = 'PROJ' ORDER BY created DESC
//	BuildJQL("PROJ", "status = Done") → project = 'PROJ' AND status = Done ORDER BY created DESC
//	BuildJQL("", "")                  → created is not null ORDER BY created DESC
func BuildJQL(projectKey, jql string) string {
	parts := make([]string, 0, 2)

	if key := strings.TrimSpace(projectKey); key != "" {
		parts = append(parts, "project = '"+jqlQuoteReplacer.Replace(key)+"'")
	}
	if fragment := strings.TrimSpace(jql); fragment != "" {
		parts = append(parts, fragment)
	}
	if len(parts) == 0 {
		parts = append(parts, defaultJQL)
	}

	return strings.Join(parts, " AND ") + jqlOrder
}
