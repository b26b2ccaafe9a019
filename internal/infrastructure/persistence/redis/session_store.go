package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"ai-article-generator/internal/domain/repository"
	"ai-article-generator/internal/domain/session"
	"ai-article-generator/pkg/metrics"
)

const backendName = "redis"

// releaseScript 仅当锁值与 token 一致时删除，避免误删他人重新获取的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore Redis 会话存储，状态以 JSON 保存
type SessionStore struct {
	client *Client
	prefix string
	ttl    time.Duration
}

var _ repository.SessionRepository = (*SessionStore)(nil)

// NewSessionStore 创建 Redis 会话存储
func NewSessionStore(client *Client, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = "article"
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SessionStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *SessionStore) lockKey(id string) string {
	return fmt.Sprintf("%s:session:%s:lock", s.prefix, id)
}

// Get 读取会话
func (s *SessionStore) Get(ctx context.Context, id string) (*session.State, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id))
	if IsNil(err) {
		observe("get", nil)
		return nil, nil
	}
	if err != nil {
		observe("get", err)
		return nil, fmt.Errorf("get session: %w", err)
	}

	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		observe("get", err)
		return nil, fmt.Errorf("decode session: %w", err)
	}
	observe("get", nil)
	return &state, nil
}

// Save 写入会话
func (s *SessionStore) Save(ctx context.Context, state *session.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	err = s.client.Set(ctx, s.sessionKey(state.ID), data, s.ttl)
	observe("save", err)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete 删除会话及其锁
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	err := s.client.Del(ctx, s.sessionKey(id), s.lockKey(id))
	observe("delete", err)
	return err
}

// AcquireRunLock SET NX 获取生成锁
func (s *SessionStore) AcquireRunLock(ctx context.Context, id string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.lockKey(id), token, ttl)
	observe("lock", err)
	if err != nil {
		return "", false, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseRunLock 释放生成锁
func (s *SessionStore) ReleaseRunLock(ctx context.Context, id, token string) error {
	ctx, span := tracer.Start(ctx, "redis.ReleaseLock")
	span.SetAttributes(attribute.String("redis.key", s.lockKey(id)))
	defer span.End()

	n, err := releaseScript.Run(ctx, s.client.rdb, []string{s.lockKey(id)}, token).Int()
	observe("unlock", err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("release run lock: %w", err)
	}
	if n == 0 {
		return repository.ErrLockNotHeld
	}
	return nil
}

// Ping 检查 Redis 可用性
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

func observe(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SessionStoreOps.WithLabelValues(backendName, op, status).Inc()
}
