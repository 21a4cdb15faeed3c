package jira

import (
	"maps"
	"slices"
	"strings"
)

// Payload is the body of POST /rest/api/3/issue. Fields is a map because
// the epic name lives in a site-specific custom field.
type Payload struct {
	Fields map[string]any `json:"fields"`
}

// NewPayload builds the create request for a ticket. The Markdown
// description is converted to an Atlassian document.
func NewPayload(projectKey string, t Ticket, parentKey, epicNameField string) *Payload {
	fields := map[string]any{
		"project":     map[string]string{"key": projectKey},
		"summary":     t.Summary,
		"description": Document(t.Description),
		"issuetype":   map[string]string{"name": t.IssueType},
		"priority":    map[string]string{"name": t.Priority},
		"labels":      t.Labels,
	}
	if parentKey != "" {
		fields["parent"] = map[string]string{"key": parentKey}
	}
	if epicNameField != "" && t.EpicName != "" {
		fields[epicNameField] = t.EpicName
	}
	return &Payload{Fields: fields}
}

// ADFNode is a node of the Atlassian Document Format.
type ADFNode struct {
	Type    string    `json:"type"`
	Version int       `json:"version,omitempty"`
	Text    string    `json:"text,omitempty"`
	Content []ADFNode `json:"content,omitempty"`
}

// Document converts text into an ADF document with one paragraph per
// blank-line separated block. Lines within a block are joined with hard breaks.
func Document(text string) ADFNode {
	doc := ADFNode{Type: "doc", Version: 1, Content: []ADFNode{}}
	for block := range strings.SplitSeq(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		para := ADFNode{Type: "paragraph"}
		for i, line := range strings.Split(block, "\n") {
			if i > 0 {
				para.Content = append(para.Content, ADFNode{Type: "hardBreak"})
			}
			if line != "" {
				para.Content = append(para.Content, ADFNode{Type: "text", Text: line})
			}
		}
		doc.Content = append(doc.Content, para)
	}
	return doc
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
