// Package service 放置跨层共享的领域上下文约定
package service

import (
	"context"
	"strings"
)

const unknownLabel = "unknown"

type llmCallKey struct{}

// LLMCall 描述一次模型调用所属的生成阶段与提供商，供 callbacks 打点使用
type LLMCall struct {
	Workflow string
	Provider string
	RunID    string
}

// WithLLMCall 把调用信息挂到 ctx；空字段继承 ctx 中已有的值
func WithLLMCall(ctx context.Context, call LLMCall) context.Context {
	if ctx == nil {
		return nil
	}
	prev, _ := ctx.Value(llmCallKey{}).(LLMCall)
	merged := LLMCall{
		Workflow: pick(call.Workflow, prev.Workflow),
		Provider: pick(call.Provider, prev.Provider),
		RunID:    pick(call.RunID, prev.RunID),
	}
	return context.WithValue(ctx, llmCallKey{}, merged)
}

// WithWorkflowProvider 设置阶段与提供商
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithLLMCall(ctx, LLMCall{Workflow: workflow, Provider: provider})
}

// LLMCallFromContext 读取调用信息，缺失字段为 "unknown"（RunID 保持为空）
func LLMCallFromContext(ctx context.Context) LLMCall {
	var call LLMCall
	if ctx != nil {
		call, _ = ctx.Value(llmCallKey{}).(LLMCall)
	}
	if call.Workflow == "" {
		call.Workflow = unknownLabel
	}
	if call.Provider == "" {
		call.Provider = unknownLabel
	}
	return call
}

func pick(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
