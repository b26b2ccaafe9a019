// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"
	"time"

	"ai-article-generator/internal/domain/session"
)

// ErrLockNotHeld 释放运行锁时锁已过期或被他人持有
var ErrLockNotHeld = errors.New("run lock not held")

// SessionRepository 会话状态存储
type SessionRepository interface {
	// Get 读取会话，不存在时返回 (nil, nil)
	Get(ctx context.Context, id string) (*session.State, error)

	// Save 写入会话并刷新过期时间
	Save(ctx context.Context, state *session.State) error

	// Delete 删除会话
	Delete(ctx context.Context, id string) error

	// AcquireRunLock 尝试获取会话的生成锁，成功时返回释放用的 token
	AcquireRunLock(ctx context.Context, id string, ttl time.Duration) (token string, ok bool, err error)

	// ReleaseRunLock 释放生成锁，token 不匹配时返回 ErrLockNotHeld
	ReleaseRunLock(ctx context.Context, id, token string) error

	// Ping 检查存储可用性
	Ping(ctx context.Context) error
}

// RateLimiter 滑动窗口限流
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
