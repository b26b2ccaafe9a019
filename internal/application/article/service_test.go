package article

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionapp "ai-article-generator/internal/application/session"
	"ai-article-generator/internal/config"
	"ai-article-generator/internal/domain/provider"
	domainsession "ai-article-generator/internal/domain/session"
	"ai-article-generator/internal/infrastructure/persistence/memory"
	workflowprompt "ai-article-generator/internal/workflow/prompt"
	apperrors "ai-article-generator/pkg/errors"
)

const testKey = "sk-or-v1-0123456789abcdef"

type nopChatModel struct{}

func (nopChatModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return nil, errors.New("not used")
}

func (nopChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not used")
}

type fakeFactory struct {
	err  error
	seen domainsession.Config
}

func (f *fakeFactory) ChatModel(_ context.Context, cfg domainsession.Config) (model.BaseChatModel, error) {
	f.seen = cfg
	if f.err != nil {
		return nil, f.err
	}
	return nopChatModel{}, nil
}

type fixture struct {
	svc      *Service
	sessions *sessionapp.Service
	store    *memory.SessionStore
	factory  *fakeFactory
	stages   *fakeStages
}

func newFixture(t *testing.T, defaultKey string) *fixture {
	t.Helper()
	reg, err := provider.FromConfig(&config.LLMConfig{
		DefaultProvider: "OpenRouter",
		DefaultModel:    "deepseek/deepseek-r1:free",
		Providers:       config.DefaultProviders(),
	})
	require.NoError(t, err)

	store := memory.NewSessionStore(time.Hour)
	sessions := sessionapp.NewService(reg, store, nil, defaultKey, 30*time.Second)
	factory := &fakeFactory{}
	stages := newFakeStages()
	svc := NewService(sessions, factory, workflowprompt.NewRegistry(), time.Minute).
		WithAgentsBuilder(func(model.BaseChatModel, string) Agents { return stages.agents() })

	return &fixture{svc: svc, sessions: sessions, store: store, factory: factory, stages: stages}
}

func TestGenerateStoresLastArticle(t *testing.T) {
	f := newFixture(t, testKey)
	ctx := context.Background()

	_, err := f.svc.LastArticle(ctx, "s1")
	assert.Equal(t, apperrors.CodeArticleNotFound, apperrors.AsAppError(err).Code)

	var events []Progress
	article, err := f.svc.Generate(ctx, "s1", "  历史 ", collect(&events))
	require.NoError(t, err)
	assert.Equal(t, "T", article.Title)
	assert.Len(t, events, 5)
	assert.Equal(t, "历史", f.stages.outline.vars["topic"])
	assert.Equal(t, testKey, f.factory.seen.APIKey)

	last, err := f.svc.LastArticle(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, article.Markdown(), last.Markdown())

	state, err := f.sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "历史", state.LastTopic)

	_, ok, err := f.store.AcquireRunLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "run lock must be released after generation")
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.svc.Generate(context.Background(), "s1", "历史", nil)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeMissingAPIKey, appErr.Code)
	assert.Equal(t, "请先设置 API Key", appErr.Message)
	assert.Equal(t, []int{0, 0, 0, 0}, f.stages.calls())
}

func TestGenerateRequiresTopic(t *testing.T) {
	f := newFixture(t, testKey)

	_, err := f.svc.Generate(context.Background(), "s1", "   ", nil)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}

func TestGenerateRejectsConcurrentRun(t *testing.T) {
	f := newFixture(t, testKey)
	ctx := context.Background()

	_, err := f.sessions.Load(ctx, "s1")
	require.NoError(t, err)
	token, ok, err := f.store.AcquireRunLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Generate(ctx, "s1", "历史", nil)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeGenerationBusy, appErr.Code)
	assert.Equal(t, 409, appErr.HTTPStatus)

	require.NoError(t, f.store.ReleaseRunLock(ctx, "s1", token))
	_, err = f.svc.Generate(ctx, "s1", "历史", nil)
	assert.NoError(t, err)
}

func TestGenerateStageFailureKeepsPreviousArticle(t *testing.T) {
	f := newFixture(t, testKey)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, "s1", "历史", nil)
	require.NoError(t, err)

	f.stages.outline.output = ""
	_, err = f.svc.Generate(ctx, "s1", "新主题", nil)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)

	state, err := f.sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "历史", state.LastTopic)
}

func TestGenerateFactoryError(t *testing.T) {
	f := newFixture(t, testKey)
	f.factory.err = errors.New("bad base url")

	_, err := f.svc.Generate(context.Background(), "s1", "历史", nil)
	require.Error(t, err)
	assert.Equal(t, "执行过程中出错: bad base url", UserMessage(err))
}
