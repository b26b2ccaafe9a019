package view

import (
	"html/template"

	"ai-article-generator/internal/domain/entity"
	"ai-article-generator/internal/domain/provider"
	"ai-article-generator/internal/domain/session"
)

// Option 下拉选项
type Option struct {
	Label    string
	Value    string
	Selected bool
}

// ProgressLine 一条进度记录
type ProgressLine struct {
	Percent int
	Message string
}

// ArticleView 文章预览
type ArticleView struct {
	Title string
	Body  template.HTML
}

// Page 主页面数据
type Page struct {
	Providers []Option
	Models    []Option

	Provider   string
	ModelLabel string
	BaseURL    string
	APIKey     string
	KeyHint    string
	Timeout    float64

	UsingDefaultKey bool
	MissingKey      bool

	Topic    string
	Progress []ProgressLine
	Article  *ArticleView

	Notice string
	Error  string
}

// NewPage 根据会话状态构建页面数据
func NewPage(reg *provider.Registry, state *session.State, usingDefaultKey bool) *Page {
	cfg := state.Config
	page := &Page{
		Provider:        cfg.Provider,
		ModelLabel:      cfg.ModelLabel(reg),
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.MaskedAPIKey(),
		Timeout:         cfg.Timeout,
		UsingDefaultKey: usingDefaultKey,
		MissingKey:      !cfg.HasAPIKey(),
		Topic:           state.LastTopic,
	}
	for _, name := range reg.Names() {
		page.Providers = append(page.Providers, Option{Label: name, Value: name, Selected: name == cfg.Provider})
	}
	if p, ok := reg.Get(cfg.Provider); ok {
		page.KeyHint = p.KeyHint()
		for _, m := range p.Models {
			page.Models = append(page.Models, Option{Label: m.Label, Value: m.Label, Selected: m.ID == cfg.Model})
		}
	}
	return page
}

// SetArticle 渲染文章预览
func (p *Page) SetArticle(a *entity.Article) error {
	if a == nil {
		p.Article = nil
		return nil
	}
	body, err := RenderMarkdown(a.Markdown())
	if err != nil {
		return err
	}
	p.Article = &ArticleView{Title: a.Title, Body: body}
	return nil
}
