// Package agent 定义文章生成的四个固定角色，每个角色是一条编译好的 eino chain
package agent

import (
	workflowprompt "ai-article-generator/internal/workflow/prompt"
)

// Role 角色标识，同时作为 LLM 指标中的 workflow 标签
type Role string

const (
	RoleOutline Role = "outline"
	RoleContent Role = "content"
	RoleSummary Role = "summary"
	RoleEditor  Role = "editor"
)

// OutputSchema 结构化输出约束（response_format=json_schema）
type OutputSchema struct {
	Name   string
	Schema map[string]any
}

// Definition 角色定义：名称、提示词、可选的输出约束
type Definition struct {
	Role     Role
	Name     string
	PromptID workflowprompt.PromptID
	Output   *OutputSchema
}

// Definitions 四个角色，按执行顺序排列
func Definitions() []Definition {
	return []Definition{
		{Role: RoleOutline, Name: "Outline Creator", PromptID: workflowprompt.PromptOutlineV1},
		{Role: RoleContent, Name: "Content Writer", PromptID: workflowprompt.PromptContentV1},
		{Role: RoleSummary, Name: "Summary Expert", PromptID: workflowprompt.PromptSummaryV1},
		{
			Role:     RoleEditor,
			Name:     "Editor",
			PromptID: workflowprompt.PromptEditorV1,
			Output:   &OutputSchema{Name: "article", Schema: articleJSONSchema()},
		},
	}
}

func articleJSONSchema() map[string]any {
	stringArray := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"title", "outline", "content", "summary", "keywords"},
		"properties": map[string]any{
			"title":   map[string]any{"type": "string"},
			"outline": stringArray,
			"content": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"summary":  map[string]any{"type": "string"},
			"keywords": stringArray,
		},
	}
}
