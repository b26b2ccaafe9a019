package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-article-generator/internal/application/article"
	apperrors "ai-article-generator/pkg/errors"
)

func TestDescribeError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    apperrors.ErrorCode
		message string
	}{
		{
			name:    "stage failure",
			err:     &article.StageError{Stage: article.StageContent, Message: "内容生成失败"},
			status:  http.StatusBadGateway,
			code:    apperrors.CodeStageFailed,
			message: "执行过程中出错: 内容生成失败",
		},
		{
			name:    "invalid article",
			err:     &article.InvalidArticleError{Raw: "not json", Err: errors.New("bad")},
			status:  http.StatusBadGateway,
			code:    apperrors.CodeInvalidArticle,
			message: "生成的内容格式不正确: not json",
		},
		{
			name:    "canceled",
			err:     fmt.Errorf("outline stage: %w", context.DeadlineExceeded),
			status:  http.StatusGatewayTimeout,
			code:    apperrors.CodeLLMCallFailed,
			message: "执行过程中出错: outline stage: context deadline exceeded",
		},
		{
			name:    "app error",
			err:     apperrors.ErrGenerationBusy,
			status:  http.StatusConflict,
			code:    apperrors.CodeGenerationBusy,
			message: "文章正在生成中，请稍候",
		},
		{
			name:    "unexpected",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			code:    apperrors.CodeGenerationFailed,
			message: "执行过程中出错: connection reset",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := describeError(tc.err)
			assert.Equal(t, tc.status, f.Status)
			assert.Equal(t, tc.code, f.Code)
			assert.Equal(t, tc.message, f.Message)
		})
	}
}
