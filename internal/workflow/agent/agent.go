package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "ai-article-generator/internal/domain/service"
	wfnode "ai-article-generator/internal/workflow/node"
	workflowprompt "ai-article-generator/internal/workflow/prompt"
	"ai-article-generator/pkg/logger"
)

// Result 单个角色的输出，只被下一阶段消费
type Result struct {
	Output string
	Usage  *schema.TokenUsage
}

// Agent 绑定了模型与提示词的角色
type Agent struct {
	def      Definition
	model    model.BaseChatModel
	prompts  *workflowprompt.Registry
	provider string

	chainOnce sync.Once
	chain     compose.Runnable[map[string]any, *Result]
	chainErr  error
}

// Option Agent 选项
type Option func(*Agent)

// WithProvider 设置提供商名称，用于日志与指标
func WithProvider(name string) Option {
	return func(a *Agent) {
		a.provider = strings.TrimSpace(name)
	}
}

// New 创建角色
func New(def Definition, chatModel model.BaseChatModel, prompts *workflowprompt.Registry, opts ...Option) *Agent {
	a := &Agent{def: def, model: chatModel, prompts: prompts}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run 执行一次角色调用。模型返回空内容时 Output 为空串，由调用方决定如何处理。
func (a *Agent) Run(ctx context.Context, vars map[string]any) (*Result, error) {
	if a == nil || a.model == nil {
		return nil, fmt.Errorf("chat model not configured")
	}
	chain, err := a.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, vars)
}

type agentState struct {
	Vars     map[string]any
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (a *Agent) getChain() (compose.Runnable[map[string]any, *Result], error) {
	a.chainOnce.Do(func() {
		a.chain, a.chainErr = a.buildChain(context.Background())
	})
	return a.chain, a.chainErr
}

func (a *Agent) buildChain(ctx context.Context) (compose.Runnable[map[string]any, *Result], error) {
	role := string(a.def.Role)
	chain := compose.NewChain[map[string]any, *Result]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, vars map[string]any) (*agentState, error) {
			if vars == nil {
				vars = map[string]any{}
			}
			return &agentState{Vars: vars}, nil
		}),
		compose.WithNodeName(role+".init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *agentState) (*agentState, error) {
			tpl, err := a.prompts.ChatTemplate(a.def.PromptID)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, st.Vars)
			if err != nil {
				return nil, fmt.Errorf("format %s prompt: %w", role, err)
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName(role+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *agentState) (*agentState, error) {
			ctx = llmctx.WithWorkflowProvider(ctx, role, a.provider)
			start := time.Now()

			outMsg, err := a.model.Generate(ctx, st.Messages, a.modelOptions(true)...)
			if err != nil && a.def.Output != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"agent", a.def.Name,
					"provider", a.provider,
					"error", err.Error(),
				)
				outMsg, err = a.model.Generate(ctx, st.Messages, a.modelOptions(false)...)
			}
			if err != nil {
				return nil, err
			}

			logger.Debug(ctx, "agent finished",
				"agent", a.def.Name,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName(role+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *agentState) (*Result, error) {
			res := &Result{}
			if st.OutMsg == nil {
				return res, nil
			}
			if st.OutMsg.ResponseMeta != nil {
				res.Usage = st.OutMsg.ResponseMeta.Usage
			}
			res.Output = strings.TrimSpace(st.OutMsg.Content)
			if a.def.Output != nil {
				res.Output = wfnode.ExtractJSONObject(res.Output)
			}
			return res, nil
		}),
		compose.WithNodeName(role+".finalize"),
	)

	return chain.Compile(ctx)
}

func (a *Agent) modelOptions(enableSchema bool) []model.Option {
	if !enableSchema || a.def.Output == nil {
		return nil
	}
	return []model.Option{
		openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   a.def.Output.Name,
					"strict": false,
					"schema": a.def.Output.Schema,
				},
			},
		}),
	}
}
