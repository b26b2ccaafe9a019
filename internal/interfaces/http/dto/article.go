package dto

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"ai-article-generator/internal/application/article"
	"ai-article-generator/internal/domain/entity"
)

// GenerateRequest 生成文章请求
type GenerateRequest struct {
	Topic string `json:"topic" form:"topic"`
}

// ArticleResponse 文章，content 保持章节顺序
type ArticleResponse struct {
	Title    string                                 `json:"title"`
	Outline  []string                               `json:"outline"`
	Content  *orderedmap.OrderedMap[string, string] `json:"content"`
	Summary  string                                 `json:"summary"`
	Keywords []string                               `json:"keywords"`
	Markdown string                                 `json:"markdown"`
	Filename string                                 `json:"filename"`
}

// ToArticleResponse 转换文章
func ToArticleResponse(a *entity.Article) *ArticleResponse {
	return &ArticleResponse{
		Title:    a.Title,
		Outline:  a.Outline,
		Content:  a.Content,
		Summary:  a.Summary,
		Keywords: a.Keywords,
		Markdown: a.Markdown(),
		Filename: a.ExportFilename(),
	}
}

// ProgressEvent SSE progress 事件
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ToProgressEvent 转换进度
func ToProgressEvent(p article.Progress) ProgressEvent {
	return ProgressEvent{
		Stage:   string(p.Stage),
		Percent: p.Percent,
		Message: p.Message,
	}
}

// ErrorEvent SSE error 事件
type ErrorEvent struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
