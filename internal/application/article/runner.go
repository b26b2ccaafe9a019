// Package article 编排四阶段的文章生成流程
package article

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ai-article-generator/internal/domain/entity"
	llmctx "ai-article-generator/internal/domain/service"
	"ai-article-generator/internal/workflow/agent"
	"ai-article-generator/pkg/logger"
	"ai-article-generator/pkg/metrics"
	"ai-article-generator/pkg/tracer"
)

// StageAgent 单个阶段的执行者
type StageAgent interface {
	Run(ctx context.Context, vars map[string]any) (*agent.Result, error)
}

// Agents 四个阶段的执行者
type Agents struct {
	Outline StageAgent
	Content StageAgent
	Summary StageAgent
	Editor  StageAgent
}

// AgentsFromSet 由角色集合构造
func AgentsFromSet(s *agent.Set) Agents {
	return Agents{Outline: s.Outline, Content: s.Content, Summary: s.Summary, Editor: s.Editor}
}

// Runner 顺序执行大纲、内容、总结、整合四个阶段
type Runner struct {
	agents Agents
}

// NewRunner 创建 Runner
func NewRunner(agents Agents) *Runner {
	return &Runner{agents: agents}
}

// Run 执行一次完整生成。任一阶段输出为空立即返回 *StageError，不再执行后续阶段。
func (r *Runner) Run(ctx context.Context, topic string, onProgress ProgressFunc) (*entity.Article, error) {
	report(onProgress, StageOutline)
	outline, err := r.runStage(ctx, StageOutline, r.agents.Outline, map[string]any{
		"topic": topic,
	})
	if err != nil {
		return nil, err
	}

	report(onProgress, StageContent)
	content, err := r.runStage(ctx, StageContent, r.agents.Content, map[string]any{
		"topic":   topic,
		"outline": outline,
	})
	if err != nil {
		return nil, err
	}

	report(onProgress, StageSummary)
	summary, err := r.runStage(ctx, StageSummary, r.agents.Summary, map[string]any{
		"content": content,
	})
	if err != nil {
		return nil, err
	}

	report(onProgress, StageEditor)
	raw, err := r.runStage(ctx, StageEditor, r.agents.Editor, map[string]any{
		"outline": outline,
		"content": content,
		"summary": summary,
	})
	if err != nil {
		return nil, err
	}

	article, err := entity.ParseArticle(raw)
	if err != nil {
		return nil, &InvalidArticleError{Raw: raw, Err: err}
	}

	report(onProgress, StageDone)
	return article, nil
}

func (r *Runner) runStage(ctx context.Context, stage Stage, a StageAgent, vars map[string]any) (string, error) {
	if a == nil {
		return "", fmt.Errorf("%s agent not configured", stage)
	}

	ctx = llmctx.WithLLMCall(ctx, llmctx.LLMCall{Workflow: string(stage)})
	ctx, span := tracer.Start(ctx, "article.stage."+string(stage))
	defer span.End()

	start := time.Now()
	res, err := a.Run(ctx, vars)
	metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s stage: %w", stage, ctxErr)
		}
		return "", fmt.Errorf("%s stage: %w", stage, err)
	}
	if res == nil || strings.TrimSpace(res.Output) == "" {
		stageErr := &StageError{Stage: stage, Message: stageSpecs[stage].failure}
		span.SetStatus(codes.Error, stageErr.Message)
		logger.Warn(ctx, "stage produced no output", "stage", string(stage))
		return "", stageErr
	}

	if res.Usage != nil {
		span.SetAttributes(attribute.Int("llm.total_tokens", res.Usage.TotalTokens))
	}
	span.SetAttributes(attribute.Int("stage.output_chars", len(res.Output)))
	return res.Output, nil
}
