package entity

import (
	"strings"
)

// Markdown 导出为 Markdown 文本：标题、大纲、正文、总结、关键词
func (a *Article) Markdown() string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(a.Title)
	b.WriteString("\n\n")

	b.WriteString("## 大纲\n")
	for _, item := range a.Outline {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## 正文\n")
	for _, s := range a.Sections() {
		b.WriteString("### ")
		b.WriteString(s.Title)
		b.WriteString("\n")
		b.WriteString(s.Body)
		b.WriteString("\n\n")
	}
	b.WriteString("\n")

	b.WriteString("## 总结\n")
	b.WriteString(a.Summary)
	b.WriteString("\n\n")

	b.WriteString("## 关键词\n")
	b.WriteString(strings.Join(a.Keywords, ", "))

	return b.String()
}

// ExportFilename 下载文件名，去掉路径分隔符
func (a *Article) ExportFilename() string {
	name := strings.TrimSpace(a.Title)
	name = strings.NewReplacer("/", "_", "\\", "_", "\n", " ", "\r", " ").Replace(name)
	if name == "" {
		name = "article"
	}
	return name + ".md"
}
