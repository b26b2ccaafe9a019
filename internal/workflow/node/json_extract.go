package node

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// StripCodeFence 去掉模型输出外层的 ``` / ```json 包裹
func StripCodeFence(s string) string {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		lang := strings.TrimSpace(raw[:i])
		if lang == "" || !strings.ContainsAny(lang, "{[") {
			raw = raw[i+1:]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

// ExtractJSONObject 从模型输出中取出第一个完整的 JSON 对象。
// 模型常在 JSON 前后附加说明文字或代码块标记；找不到合法对象时返回清理后的原文。
func ExtractJSONObject(s string) string {
	raw := StripCodeFence(s)
	if raw == "" {
		return raw
	}

	for offset := 0; offset < len(raw); {
		i := strings.IndexByte(raw[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i
		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(raw[start:])).Decode(&obj); err == nil {
			return string(obj)
		}
		offset = start + 1
	}
	return raw
}

// TruncateByRunes 按字符数截断，用于日志与错误信息
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
