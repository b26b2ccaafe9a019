// Package memory 提供进程内的会话存储与限流实现，适用于单实例部署与测试
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-article-generator/internal/domain/repository"
	"ai-article-generator/internal/domain/session"
	"ai-article-generator/pkg/metrics"
)

const backendName = "memory"

type sessionEntry struct {
	data      []byte
	expiresAt time.Time
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// SessionStore 进程内会话存储。状态按 JSON 快照保存，读写互不共享指针。
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]sessionEntry
	locks    map[string]lockEntry
}

var _ repository.SessionRepository = (*SessionStore)(nil)

// NewSessionStore 创建进程内会话存储
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]sessionEntry),
		locks:    make(map[string]lockEntry),
	}
}

// Get 读取会话，过期视为不存在
func (s *SessionStore) Get(_ context.Context, id string) (*session.State, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok && s.expired(e.expiresAt) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()

	observe("get")
	if !ok {
		return nil, nil
	}
	var state session.State
	if err := json.Unmarshal(e.data, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}

// Save 写入会话快照
func (s *SessionStore) Save(_ context.Context, state *session.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	s.sessions[state.ID] = sessionEntry{data: data, expiresAt: s.deadline(s.ttl)}
	s.mu.Unlock()

	observe("save")
	return nil
}

// Delete 删除会话及其锁
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	delete(s.locks, id)
	s.mu.Unlock()

	observe("delete")
	return nil
}

// AcquireRunLock 获取生成锁，已过期的锁视为空闲
func (s *SessionStore) AcquireRunLock(_ context.Context, id string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	observe("lock")

	if l, held := s.locks[id]; held && !s.expired(l.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	s.locks[id] = lockEntry{token: token, expiresAt: s.deadline(ttl)}
	return token, true, nil
}

// ReleaseRunLock 释放生成锁
func (s *SessionStore) ReleaseRunLock(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	observe("unlock")

	l, held := s.locks[id]
	if !held || l.token != token {
		return repository.ErrLockNotHeld
	}
	delete(s.locks, id)
	return nil
}

// Ping 进程内存储始终可用
func (s *SessionStore) Ping(context.Context) error {
	return nil
}

// Sweep 清理过期会话与锁，返回清理的会话数
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		if s.expired(e.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	for id, l := range s.locks {
		if s.expired(l.expiresAt) {
			delete(s.locks, id)
		}
	}
	return n
}

// RunSweeper 周期性清理，直到 ctx 结束
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *SessionStore) expired(at time.Time) bool {
	return !at.IsZero() && !s.now().Before(at)
}

func observe(op string) {
	metrics.SessionStoreOps.WithLabelValues(backendName, op, "success").Inc()
}
