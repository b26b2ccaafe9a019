package article

import (
	"context"
	"errors"
	"fmt"

	wfnode "ai-article-generator/internal/workflow/node"
)

// maxRawPreview 错误信息中保留的编辑输出长度
const maxRawPreview = 2000

// StageError 某一阶段没有产出结果，后续阶段不会执行
type StageError struct {
	Stage   Stage
	Message string
}

func (e *StageError) Error() string {
	return e.Message
}

// ErrInvalidArticle 编辑输出不是合法的文章结构
var ErrInvalidArticle = errors.New("生成的内容格式不正确")

// InvalidArticleError 携带编辑原始输出的格式错误
type InvalidArticleError struct {
	Raw string
	Err error
}

func (e *InvalidArticleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidArticle.Error(), wfnode.TruncateByRunes(e.Raw, maxRawPreview))
}

func (e *InvalidArticleError) Is(target error) bool {
	return target == ErrInvalidArticle
}

func (e *InvalidArticleError) Unwrap() error {
	return e.Err
}

// Outcome 一次运行的结果分类，用于指标与日志
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeStageFailed    Outcome = "stage_failed"
	OutcomeInvalidArticle Outcome = "invalid_article"
	OutcomeCanceled       Outcome = "canceled"
	OutcomeError          Outcome = "error"
)

// Classify 对运行错误分类
func Classify(err error) Outcome {
	var stageErr *StageError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &stageErr):
		return OutcomeStageFailed
	case errors.Is(err, ErrInvalidArticle):
		return OutcomeInvalidArticle
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

// UserMessage 把运行错误转换为界面展示的一句话
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var invalid *InvalidArticleError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return "执行过程中出错: " + stageErr.Message
	}
	return "执行过程中出错: " + err.Error()
}
