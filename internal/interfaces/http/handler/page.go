package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-article-generator/internal/application/article"
	sessionapp "ai-article-generator/internal/application/session"
	"ai-article-generator/internal/domain/entity"
	"ai-article-generator/internal/interfaces/http/dto"
	"ai-article-generator/internal/interfaces/http/middleware"
	"ai-article-generator/internal/interfaces/http/view"
	"ai-article-generator/pkg/logger"
)

// PageHandler 浏览器页面：配置表单、生成与导出
type PageHandler struct {
	sessions *sessionapp.Service
	articles ArticleGenerator
}

// NewPageHandler 创建页面处理器
func NewPageHandler(sessions *sessionapp.Service, articles ArticleGenerator) *PageHandler {
	return &PageHandler{sessions: sessions, articles: articles}
}

// pageResult 一次页面操作的结果
type pageResult struct {
	status   int
	notice   string
	err      error
	topic    string
	progress []view.ProgressLine
	article  *entity.Article
}

// Index 主页面，展示当前配置与最近一次生成的文章
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, pageResult{status: http.StatusOK})
}

// SelectProvider 切换提供商
func (h *PageHandler) SelectProvider(c *gin.Context) {
	var req dto.SelectProviderRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, pageResult{status: http.StatusBadRequest, err: errInvalidForm})
		return
	}
	state, err := h.sessions.SelectProvider(c.Request.Context(), middleware.GetSessionID(c), req.Provider)
	if err != nil {
		h.render(c, pageResult{err: err})
		return
	}
	h.render(c, pageResult{status: http.StatusOK, notice: "已切换到 " + state.Config.Provider})
}

// SelectModel 选择模型，表单提交的是模型展示名
func (h *PageHandler) SelectModel(c *gin.Context) {
	var req dto.SelectModelRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, pageResult{status: http.StatusBadRequest, err: errInvalidForm})
		return
	}
	if _, err := h.sessions.SelectModel(c.Request.Context(), middleware.GetSessionID(c), req.Model); err != nil {
		h.render(c, pageResult{err: err})
		return
	}
	h.render(c, pageResult{status: http.StatusOK})
}

// SaveAPISettings 保存 API Key 与超时
func (h *PageHandler) SaveAPISettings(c *gin.Context) {
	var req dto.SaveAPIRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, pageResult{status: http.StatusBadRequest, err: errInvalidForm})
		return
	}
	if _, err := saveAPISettings(c, h.sessions, req); err != nil {
		h.render(c, pageResult{err: err})
		return
	}
	h.render(c, pageResult{status: http.StatusOK, notice: "API 设置已更新！"})
}

// Generate 同步生成文章并展示进度记录
func (h *PageHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, pageResult{status: http.StatusBadRequest, err: errInvalidForm})
		return
	}

	var progress []view.ProgressLine
	a, err := h.articles.Generate(c.Request.Context(), middleware.GetSessionID(c), req.Topic, func(p article.Progress) {
		progress = append(progress, view.ProgressLine{Percent: p.Percent, Message: p.Message})
	})
	if err != nil {
		h.render(c, pageResult{err: err, topic: req.Topic, progress: progress})
		return
	}
	h.render(c, pageResult{status: http.StatusOK, topic: req.Topic, progress: progress, article: a})
}

// Export 下载最近一次生成的文章
func (h *PageHandler) Export(c *gin.Context) {
	a, err := h.articles.LastArticle(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.render(c, pageResult{err: err})
		return
	}
	writeMarkdown(c, a)
}

func (h *PageHandler) render(c *gin.Context, res pageResult) {
	ctx := c.Request.Context()
	state, err := h.sessions.Load(ctx, middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	page := view.NewPage(h.sessions.Registry(), state, h.sessions.UsingDefaultKey(state.Config))
	page.Notice = res.notice
	page.Progress = res.progress
	if res.topic != "" {
		page.Topic = res.topic
	}
	if page.Topic == "" {
		page.Topic = article.DefaultTopic
	}

	status := res.status
	if res.err != nil {
		f := describeError(res.err)
		page.Error = f.Message
		if status == 0 {
			status = f.Status
		}
	}

	shown := res.article
	if shown == nil && res.err == nil {
		shown = state.LastArticle
	}
	if err := page.SetArticle(shown); err != nil {
		logger.Warn(ctx, "render article preview failed", "error", err.Error())
	}

	c.HTML(status, view.IndexTemplate, page)
}
