package article

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"

	sessionapp "ai-article-generator/internal/application/session"
	"ai-article-generator/internal/domain/entity"
	llmctx "ai-article-generator/internal/domain/service"
	domainsession "ai-article-generator/internal/domain/session"
	"ai-article-generator/internal/workflow/agent"
	"ai-article-generator/internal/workflow/port"
	workflowprompt "ai-article-generator/internal/workflow/prompt"
	apperrors "ai-article-generator/pkg/errors"
	"ai-article-generator/pkg/logger"
	"ai-article-generator/pkg/metrics"
)

// DefaultTopic 表单中的默认主题
const DefaultTopic = "人工智能的发展历史"

// AgentsBuilder 由模型句柄构建四个阶段的执行者
type AgentsBuilder func(chatModel model.BaseChatModel, provider string) Agents

// Service 文章生成服务：加锁、取模型、执行流程、保存最近一篇文章
type Service struct {
	sessions  *sessionapp.Service
	factory   port.ChatModelFactory
	lockTTL   time.Duration
	newAgents AgentsBuilder
}

// NewService 创建文章生成服务
func NewService(sessions *sessionapp.Service, factory port.ChatModelFactory, prompts *workflowprompt.Registry, lockTTL time.Duration) *Service {
	return &Service{
		sessions: sessions,
		factory:  factory,
		lockTTL:  lockTTL,
		newAgents: func(chatModel model.BaseChatModel, provider string) Agents {
			return AgentsFromSet(agent.NewSet(chatModel, prompts, agent.WithProvider(provider)))
		},
	}
}

// WithAgentsBuilder 替换阶段执行者的构建方式
func (s *Service) WithAgentsBuilder(b AgentsBuilder) *Service {
	s.newAgents = b
	return s
}

// Generate 为会话生成一篇文章。同一会话同时只允许一次生成。
func (s *Service) Generate(ctx context.Context, sessionID, topic string, onProgress ProgressFunc) (*entity.Article, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "请输入文章主题")
	}

	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cfg := state.Config
	if !cfg.HasAPIKey() {
		return nil, apperrors.ErrMissingAPIKey
	}

	store := s.sessions.Store()
	token, ok, err := store.AcquireRunLock(ctx, state.ID, s.lockTTL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "获取生成锁失败")
	}
	if !ok {
		return nil, apperrors.ErrGenerationBusy
	}
	defer func() {
		releaseCtx := context.WithoutCancel(ctx)
		if err := store.ReleaseRunLock(releaseCtx, state.ID, token); err != nil {
			logger.Warn(releaseCtx, "release run lock failed", "error", err.Error())
		}
	}()

	runID := uuid.NewString()
	ctx = logger.WithContext(ctx, logger.RunIDKey, runID)
	ctx = llmctx.WithLLMCall(ctx, llmctx.LLMCall{Provider: cfg.Provider, RunID: runID})

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()
	start := time.Now()

	logger.Info(ctx, "article generation started",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"topic", topic,
	)

	article, err := s.run(ctx, cfg, topic, onProgress)

	outcome := Classify(err)
	metrics.ArticleRunsTotal.WithLabelValues(cfg.Provider, string(outcome)).Inc()
	metrics.ArticleRunDuration.WithLabelValues(cfg.Provider).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error(ctx, "article generation failed", err,
			"outcome", string(outcome),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	if err := s.saveLast(ctx, state.ID, topic, article); err != nil {
		logger.Warn(ctx, "save last article failed", "error", err.Error())
	}
	logger.Info(ctx, "article generation finished",
		"title", article.Title,
		"sections", len(article.Outline),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return article, nil
}

func (s *Service) run(ctx context.Context, cfg domainsession.Config, topic string, onProgress ProgressFunc) (*entity.Article, error) {
	chatModel, err := s.factory.ChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewRunner(s.newAgents(chatModel, cfg.Provider)).Run(ctx, topic, onProgress)
}

// saveLast 重新读取会话后写入，避免覆盖生成期间的配置修改
func (s *Service) saveLast(ctx context.Context, sessionID, topic string, article *entity.Article) error {
	state, err := s.sessions.Load(context.WithoutCancel(ctx), sessionID)
	if err != nil {
		return err
	}
	state.LastTopic = topic
	state.LastArticle = article
	return s.sessions.Save(context.WithoutCancel(ctx), state)
}

// LastArticle 会话最近一次生成的文章
func (s *Service) LastArticle(ctx context.Context, sessionID string) (*entity.Article, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.LastArticle == nil {
		return nil, apperrors.ErrArticleNotFound
	}
	return state.LastArticle, nil
}
