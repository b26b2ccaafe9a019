package agent

import (
	"github.com/cloudwego/eino/components/model"

	workflowprompt "ai-article-generator/internal/workflow/prompt"
)

// Set 一次生成使用的四个角色，共享同一个模型句柄
type Set struct {
	Outline *Agent
	Content *Agent
	Summary *Agent
	Editor  *Agent
}

// NewSet 基于同一个模型创建全部角色
func NewSet(chatModel model.BaseChatModel, prompts *workflowprompt.Registry, opts ...Option) *Set {
	s := &Set{}
	for _, def := range Definitions() {
		a := New(def, chatModel, prompts, opts...)
		switch def.Role {
		case RoleOutline:
			s.Outline = a
		case RoleContent:
			s.Content = a
		case RoleSummary:
			s.Summary = a
		case RoleEditor:
			s.Editor = a
		}
	}
	return s
}
