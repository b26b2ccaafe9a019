package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-article-generator/internal/application/article"
	sessionapp "ai-article-generator/internal/application/session"
	"ai-article-generator/internal/config"
	"ai-article-generator/internal/domain/entity"
	"ai-article-generator/internal/domain/provider"
	"ai-article-generator/internal/infrastructure/persistence/memory"
	"ai-article-generator/internal/interfaces/http/handler"
	"ai-article-generator/internal/interfaces/http/middleware"
	apperrors "ai-article-generator/pkg/errors"
)

const (
	testSession = "6f1d3c9a-2b7e-4c1a-9d3e-5a8b7c6d5e4f"
	testKey     = "sk-or-v1-0123456789abcdef"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeArticles 按会话记录最近一次文章的生成服务
type fakeArticles struct {
	mu      sync.Mutex
	article *entity.Article
	err     error
	// preErr 在任何进度之前返回的错误
	preErr error
	last   map[string]*entity.Article
	topics []string
}

func newFakeArticles() *fakeArticles {
	return &fakeArticles{
		article: entity.NewArticle("T", []string{"A", "B"},
			[]entity.Section{{Title: "A", Body: "x"}, {Title: "B", Body: "y"}},
			"S", []string{"k1", "k2"}),
		last: make(map[string]*entity.Article),
	}
}

func (f *fakeArticles) Generate(_ context.Context, sessionID, topic string, onProgress article.ProgressFunc) (*entity.Article, error) {
	f.mu.Lock()
	f.topics = append(f.topics, topic)
	f.mu.Unlock()

	if f.preErr != nil {
		return nil, f.preErr
	}
	emit := func(stage article.Stage) {
		if onProgress != nil {
			onProgress(article.ProgressOf(stage))
		}
	}
	emit(article.StageOutline)
	if f.err != nil {
		return nil, f.err
	}
	emit(article.StageContent)
	emit(article.StageSummary)
	emit(article.StageEditor)
	emit(article.StageDone)

	f.mu.Lock()
	f.last[sessionID] = f.article
	f.mu.Unlock()
	return f.article, nil
}

func (f *fakeArticles) LastArticle(_ context.Context, sessionID string) (*entity.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.last[sessionID]
	if !ok {
		return nil, apperrors.ErrArticleNotFound
	}
	return a, nil
}

type fixture struct {
	engine   *gin.Engine
	articles *fakeArticles
	sessions *sessionapp.Service
}

func newFixture(t *testing.T, defaultKey string, rateLimit int) *fixture {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Name: "ai-article-generator", Env: "test"},
		Session: config.SessionConfig{
			CookieName: "article_session",
			TTL:        time.Hour,
			KeyPrefix:  "article",
		},
		Observability: config.ObservabilityConfig{
			Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
		Security: config.SecurityConfig{
			RateLimit: config.RateLimitConfig{Enabled: true, Requests: rateLimit, Window: time.Minute},
		},
	}

	reg, err := provider.FromConfig(&config.LLMConfig{
		DefaultProvider: "OpenRouter",
		DefaultModel:    "deepseek/deepseek-r1:free",
		Providers:       config.DefaultProviders(),
	})
	require.NoError(t, err)

	store := memory.NewSessionStore(time.Hour)
	sessions := sessionapp.NewService(reg, store, nil, defaultKey, 30*time.Second)
	articles := newFakeArticles()

	r, err := New(cfg, Handlers{
		Health:  handler.NewHealthHandler(store, "memory", "test"),
		Session: handler.NewSessionHandler(sessions),
		Article: handler.NewArticleHandler(articles),
		Page:    handler.NewPageHandler(sessions, articles),
	}, memory.NewRateLimiter())
	require.NoError(t, err)

	return &fixture{engine: r.Engine(), articles: articles, sessions: sessions}
}

// streamRecorder 为 SSE 测试提供 CloseNotify
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func (f *fixture) do(method, path, body, contentType string) *httptest.ResponseRecorder {
	rec := newStreamRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(middleware.SessionIDHeader, testSession)
	f.engine.ServeHTTP(rec, req)
	return rec.ResponseRecorder
}

func (f *fixture) postJSON(path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	return f.do(http.MethodPost, path, string(raw), "application/json")
}

func (f *fixture) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	return f.do(http.MethodPost, path, values.Encode(), "application/x-www-form-urlencoded")
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   struct {
		ErrorCode string `json:"error_code"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndexAssignsSessionCookie(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "AI 文章生成器")
	assert.Contains(t, body, `value="人工智能的发展历史"`)
	assert.Contains(t, body, "当前使用的是默认 API Key")
	assert.Contains(t, body, "由 AI 驱动 | 基于 DeepSeek R1 模型")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "article_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, cookies[0].Value, rec.Header().Get(middleware.SessionIDHeader))
}

func TestIndexWarnsWithoutKey(t *testing.T) {
	f := newFixture(t, "", 10)

	rec := f.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "请先在侧边栏设置 API Key")
	assert.Contains(t, rec.Body.String(), "<details open>")
}

func TestSelectProviderResetsModel(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.postForm("/settings/provider", url.Values{"provider": {"OpenAI"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "已切换到 OpenAI")
	assert.Contains(t, body, "模型: GPT-3.5")
	assert.Contains(t, body, "API URL: https://api.openai.com/v1")

	rec = f.do(http.MethodGet, "/v1/session", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Provider string `json:"provider"`
			Model    string `json:"model"`
			BaseURL  string `json:"base_url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OpenAI", resp.Data.Provider)
	assert.Equal(t, "gpt-3.5-turbo", resp.Data.Model)
	assert.Equal(t, "https://api.openai.com/v1", resp.Data.BaseURL)
}

func TestSelectModelByLabel(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.postForm("/settings/model", url.Values{"model": {"DeepSeek Chat"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="DeepSeek Chat" selected>`)

	state, err := f.sessions.Load(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, "deepseek/deepseek-chat:free", state.Config.Model)
}

func TestUnknownProviderIsRejected(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.do(http.MethodPut, "/v1/session/provider", `{"provider":"Nope"}`, "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(apperrors.CodeUnknownProvider), decodeError(t, rec).Error.ErrorCode)
}

func TestSaveAPISettings(t *testing.T) {
	f := newFixture(t, "", 10)

	rec := f.do(http.MethodPut, "/v1/session/api", `{"api_key":"bad"}`, "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "请输入有效的 OpenRouter API Key（以 sk-or-v1- 开头）", decodeError(t, rec).Message)

	rec = f.postForm("/settings/api", url.Values{"api_key": {testKey}, "timeout": {"60"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "API 设置已更新！")

	state, err := f.sessions.Load(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, testKey, state.Config.APIKey)
	assert.Equal(t, 60.0, state.Config.Timeout)

	rec = f.do(http.MethodGet, "/v1/session", "", "")
	assert.NotContains(t, rec.Body.String(), testKey)

	rec = f.postForm("/settings/api", url.Values{"api_key": {""}, "timeout": {"90"}})
	require.Equal(t, http.StatusOK, rec.Code)
	state, err = f.sessions.Load(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, testKey, state.Config.APIKey)
	assert.Equal(t, 90.0, state.Config.Timeout)
}

func TestProbeWithoutListerIsUnavailable(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.do(http.MethodPost, "/v1/session/probe", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGenerateAPI(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.postJSON("/v1/articles", map[string]string{"topic": "历史"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Title    string          `json:"title"`
			Content  json.RawMessage `json:"content"`
			Markdown string          `json:"markdown"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "T", resp.Data.Title)
	assert.Equal(t, `{"A":"x","B":"y"}`, string(resp.Data.Content))
	assert.True(t, strings.HasPrefix(resp.Data.Markdown, "# T"))
	assert.Equal(t, []string{"历史"}, f.articles.topics)
}

func TestGenerateStageFailure(t *testing.T) {
	f := newFixture(t, testKey, 10)
	f.articles.err = &article.StageError{Stage: article.StageOutline, Message: "大纲生成失败"}

	rec := f.postJSON("/v1/articles", map[string]string{"topic": "历史"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "执行过程中出错: 大纲生成失败", body.Message)
	assert.Equal(t, string(apperrors.CodeStageFailed), body.Error.ErrorCode)

	rec = f.do(http.MethodGet, "/v1/articles/last", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateBusy(t *testing.T) {
	f := newFixture(t, testKey, 10)
	f.articles.preErr = apperrors.ErrGenerationBusy

	rec := f.postJSON("/v1/articles", map[string]string{"topic": "历史"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPageGenerateShowsArticle(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.postForm("/generate", url.Values{"topic": {"历史"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>T</h1>")
	assert.Contains(t, body, "文章生成完成！")
	assert.Contains(t, body, `value="历史"`)
	assert.Contains(t, body, "下载 Markdown 文件")
}

func TestPageGenerateShowsFailure(t *testing.T) {
	f := newFixture(t, testKey, 10)
	f.articles.err = &article.StageError{Stage: article.StageOutline, Message: "大纲生成失败"}

	rec := f.postForm("/generate", url.Values{"topic": {"历史"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "执行过程中出错: 大纲生成失败")
	assert.NotContains(t, rec.Body.String(), "下载 Markdown 文件")
}

func TestStreamEmitsProgressAndArticle(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.postJSON("/v1/articles/stream", map[string]string{"topic": "历史"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream;charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Equal(t, 5, strings.Count(body, "event:progress"))
	assert.Contains(t, body, `"percent":25`)
	assert.Contains(t, body, `"message":"文章生成完成！"`)
	assert.Contains(t, body, "event:article")
	assert.Less(t, strings.Index(body, `"percent":90`), strings.Index(body, "event:article"))
}

func TestStreamReportsStageError(t *testing.T) {
	f := newFixture(t, testKey, 10)
	f.articles.err = &article.StageError{Stage: article.StageOutline, Message: "大纲生成失败"}

	rec := f.postJSON("/v1/articles/stream", map[string]string{"topic": "历史"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "event:progress")
	assert.Contains(t, body, "event:error")
	assert.Contains(t, body, "执行过程中出错: 大纲生成失败")
	assert.NotContains(t, body, "event:article")
}

func TestStreamRejectsBeforeStart(t *testing.T) {
	f := newFixture(t, "", 10)
	f.articles.preErr = apperrors.ErrMissingAPIKey

	rec := f.postJSON("/v1/articles/stream", map[string]string{"topic": "历史"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "请先设置 API Key", decodeError(t, rec).Message)
}

func TestExportMarkdown(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.do(http.MethodGet, "/v1/articles/last/export", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "暂无已生成的文章", decodeError(t, rec).Message)

	require.Equal(t, http.StatusOK, f.postJSON("/v1/articles", map[string]string{"topic": "历史"}).Code)

	for _, path := range []string{"/export", "/v1/articles/last/export"} {
		rec = f.do(http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=T.md", rec.Header().Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "# T\n\n## 大纲\n- A\n- B\n"))
		assert.Contains(t, rec.Body.String(), "## 关键词\nk1, k2")
	}
}

func TestGenerateRateLimited(t *testing.T) {
	f := newFixture(t, testKey, 1)

	require.Equal(t, http.StatusOK, f.postJSON("/v1/articles", map[string]string{"topic": "历史"}).Code)

	rec := f.postJSON("/v1/articles", map[string]string{"topic": "历史"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, string(apperrors.CodeTooManyRequests), decodeError(t, rec).Error.ErrorCode)

	// 读取接口不受限
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/session", "", "").Code)
}

func TestSystemEndpoints(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.do(http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_store"`)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/live", "", "").Code)

	rec = f.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ai_article_http_requests_total")
}

func TestProvidersListed(t *testing.T) {
	f := newFixture(t, testKey, 10)

	rec := f.do(http.MethodGet, "/v1/providers", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			DefaultProvider string `json:"default_provider"`
			Providers       []struct {
				Name string `json:"name"`
			} `json:"providers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OpenRouter", resp.Data.DefaultProvider)
	require.Len(t, resp.Data.Providers, 4)
	assert.Equal(t, "OpenRouter", resp.Data.Providers[0].Name)
}
