package node

import "strings"

// IsResponseFormatUnsupportedError 判断提供商是否拒绝了 response_format / json_schema 参数。
// OpenRouter 的免费模型与部分兼容网关不支持结构化输出，需要退回仅靠提示词约束 JSON。
func IsResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "response_format"):
		return true
	case strings.Contains(msg, "json_schema"):
		return true
	case strings.Contains(msg, "structured output"):
		return true
	default:
		return false
	}
}
