// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-article-generator/internal/application/article"
	"ai-article-generator/internal/interfaces/http/dto"
	apperrors "ai-article-generator/pkg/errors"
)

var errInvalidForm = apperrors.New(apperrors.CodeInvalidParam, "表单参数不正确")

// failure 服务错误在 HTTP 边界上的表示
type failure struct {
	Status  int
	Code    apperrors.ErrorCode
	Message string
	Detail  string
}

// describeError 把服务错误映射为状态码与面向用户的提示
func describeError(err error) failure {
	switch article.Classify(err) {
	case article.OutcomeStageFailed:
		return failure{Status: http.StatusBadGateway, Code: apperrors.CodeStageFailed, Message: article.UserMessage(err)}
	case article.OutcomeInvalidArticle:
		return failure{Status: http.StatusBadGateway, Code: apperrors.CodeInvalidArticle, Message: article.UserMessage(err)}
	case article.OutcomeCanceled:
		return failure{Status: http.StatusGatewayTimeout, Code: apperrors.CodeLLMCallFailed, Message: article.UserMessage(err)}
	}

	if apperrors.IsAppError(err) {
		appErr := apperrors.AsAppError(err)
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return failure{Status: status, Code: appErr.Code, Message: appErr.Message, Detail: appErr.Detail}
	}
	return failure{Status: http.StatusInternalServerError, Code: apperrors.CodeGenerationFailed, Message: article.UserMessage(err)}
}

// respondError 以统一错误结构返回
func respondError(c *gin.Context, err error) {
	f := describeError(err)
	dto.ErrorWithDetail(c, f.Status, f.Message, &dto.ErrorDetail{
		ErrorCode: string(f.Code),
		Details:   f.Detail,
	})
}
