package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptOutlineV1 PromptID = "outline_v1"
	PromptContentV1 PromptID = "content_v1"
	PromptSummaryV1 PromptID = "summary_v1"
	PromptEditorV1  PromptID = "editor_v1"
)

// Registry 按需加载并缓存 ChatTemplate，并发安全
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	system, user, err := loadPromptPair(id)
	if err != nil {
		return nil, err
	}

	// 模板正文包含 JSON 示例，使用 Go 模板语法避免转义花括号
	tpl := einoprompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func loadPromptPair(id PromptID) (system string, user string, err error) {
	switch id {
	case PromptOutlineV1, PromptContentV1, PromptSummaryV1, PromptEditorV1:
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}

	base := "templates/" + string(id)
	if system, err = readEmbeddedText(base + ".system.txt"); err != nil {
		return "", "", err
	}
	if user, err = readEmbeddedText(base + ".user.txt"); err != nil {
		return "", "", err
	}
	return system, user, nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
