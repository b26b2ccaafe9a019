// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// articleFields Article JSON 必须包含的字段
var articleFields = []string{"title", "outline", "content", "summary", "keywords"}

// Article 一次生成得到的完整文章。Content 保留编辑输出中章节的顺序。
type Article struct {
	Title    string                                 `json:"title"`
	Outline  []string                               `json:"outline"`
	Content  *orderedmap.OrderedMap[string, string] `json:"content"`
	Summary  string                                 `json:"summary"`
	Keywords []string                               `json:"keywords"`
}

// Section 正文中的一个章节
type Section struct {
	Title string
	Body  string
}

// NewArticle 按给定章节顺序构建文章
func NewArticle(title string, outline []string, sections []Section, summary string, keywords []string) *Article {
	content := orderedmap.New[string, string](orderedmap.WithCapacity[string, string](len(sections)))
	for _, s := range sections {
		content.Set(s.Title, s.Body)
	}
	return &Article{
		Title:    title,
		Outline:  outline,
		Content:  content,
		Summary:  summary,
		Keywords: keywords,
	}
}

// Sections 按顺序返回正文章节
func (a *Article) Sections() []Section {
	if a.Content == nil {
		return nil
	}
	out := make([]Section, 0, a.Content.Len())
	for pair := a.Content.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Section{Title: pair.Key, Body: pair.Value})
	}
	return out
}

// Validate 校验文章结构
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("title is empty")
	}
	if a.Outline == nil {
		return fmt.Errorf("outline is missing")
	}
	if a.Content == nil {
		return fmt.Errorf("content is missing")
	}
	if a.Keywords == nil {
		return fmt.Errorf("keywords is missing")
	}
	return nil
}

// ParseArticle 从 JSON 对象解析并校验文章
func ParseArticle(raw string) (*Article, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	for _, name := range articleFields {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return nil, fmt.Errorf("article field %q is missing", name)
		}
	}

	var article Article
	if err := json.Unmarshal([]byte(raw), &article); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	if err := article.Validate(); err != nil {
		return nil, err
	}
	return &article, nil
}
