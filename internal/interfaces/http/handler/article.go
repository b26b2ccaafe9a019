package handler

import (
	"context"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-article-generator/internal/application/article"
	"ai-article-generator/internal/domain/entity"
	"ai-article-generator/internal/interfaces/http/dto"
	"ai-article-generator/internal/interfaces/http/middleware"
)

// ArticleGenerator 文章生成服务
type ArticleGenerator interface {
	Generate(ctx context.Context, sessionID, topic string, onProgress article.ProgressFunc) (*entity.Article, error)
	LastArticle(ctx context.Context, sessionID string) (*entity.Article, error)
}

// ArticleHandler 文章生成接口
type ArticleHandler struct {
	articles ArticleGenerator
}

// NewArticleHandler 创建文章处理器
func NewArticleHandler(articles ArticleGenerator) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// Generate 同步生成文章
// @Summary 生成文章
// @Tags Articles
// @Accept json
// @Produce json
// @Param body body dto.GenerateRequest true "主题"
// @Success 200 {object} dto.Response[dto.ArticleResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/articles [post]
func (h *ArticleHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	a, err := h.articles.Generate(c.Request.Context(), middleware.GetSessionID(c), req.Topic, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToArticleResponse(a))
}

type generateResult struct {
	article *entity.Article
	err     error
}

// Stream 以 SSE 推送生成进度，事件依次为 progress、article 或 error。
// 生成开始前的错误（参数、API Key、并发）以普通 JSON 错误返回。
// @Summary 流式生成文章
// @Tags Articles
// @Accept json
// @Produce text/event-stream
// @Param body body dto.GenerateRequest true "主题"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/articles/stream [post]
func (h *ArticleHandler) Stream(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	sessionID := middleware.GetSessionID(c)
	events := make(chan article.Progress, 8)
	done := make(chan generateResult, 1)

	go func() {
		a, err := h.articles.Generate(ctx, sessionID, req.Topic, func(p article.Progress) {
			select {
			case events <- p:
			case <-ctx.Done():
			}
		})
		done <- generateResult{article: a, err: err}
	}()

	var (
		first  *article.Progress
		result *generateResult
	)
	select {
	case p := <-events:
		first = &p
	case r := <-done:
		if r.err != nil && len(events) == 0 {
			respondError(c, r.err)
			return
		}
		result = &r
	case <-ctx.Done():
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		if first != nil {
			c.SSEvent("progress", dto.ToProgressEvent(*first))
			first = nil
			return true
		}
		if result == nil {
			select {
			case p := <-events:
				c.SSEvent("progress", dto.ToProgressEvent(p))
				return true
			case r := <-done:
				result = &r
			case <-ctx.Done():
				return false
			}
		}

		// 生成已结束，写出缓冲中剩余的进度
		for len(events) > 0 {
			c.SSEvent("progress", dto.ToProgressEvent(<-events))
		}
		if result.err != nil {
			f := describeError(result.err)
			c.SSEvent("error", dto.ErrorEvent{ErrorCode: string(f.Code), Message: f.Message})
			return false
		}
		c.SSEvent("article", dto.ToArticleResponse(result.article))
		return false
	})
}

// LastArticle 会话最近一次生成的文章
// @Summary 最近一次生成的文章
// @Tags Articles
// @Produce json
// @Success 200 {object} dto.Response[dto.ArticleResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/articles/last [get]
func (h *ArticleHandler) LastArticle(c *gin.Context) {
	a, err := h.articles.LastArticle(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToArticleResponse(a))
}

// Export 下载最近一次生成的文章（Markdown）
// @Summary 导出 Markdown
// @Tags Articles
// @Produce text/markdown
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/articles/last/export [get]
func (h *ArticleHandler) Export(c *gin.Context) {
	a, err := h.articles.LastArticle(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	writeMarkdown(c, a)
}

// writeMarkdown 以附件形式写出文章，文件名为 {title}.md
func writeMarkdown(c *gin.Context, a *entity.Article) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": a.ExportFilename()})
	if disposition == "" {
		disposition = `attachment; filename="article.md"`
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(a.Markdown()))
}
