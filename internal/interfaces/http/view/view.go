// Package view 页面模板与 Markdown 预览渲染
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexTemplate 主页面模板名
const IndexTemplate = "index.html"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.CJK),
)

// Templates 解析内嵌的页面模板
func Templates() (*template.Template, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tpl, nil
}

// RenderMarkdown 把 Markdown 渲染为 HTML。未开启 unsafe，原始 HTML 片段会被丢弃。
func RenderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
