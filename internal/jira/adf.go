package jira

// adfNode — узел Atlassian Document Format (минимальное подмножество:
// документ, абзац, текст).
type adfNode struct {
	Type    string    `json:"type"`
	Version int       `json:"version,omitempty"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

// plainTextDoc оборачивает текст в ADF-документ из одного абзаца.
func plainTextDoc(text string) *adfNode {
	return &adfNode{
		Type:    "doc",
		Version: 1,
		Content: []adfNode{
			{
				Type: "paragraph",
				Content: []adfNode{
					{Type: "text", Text: text},
				},
			},
		},
	}
}
