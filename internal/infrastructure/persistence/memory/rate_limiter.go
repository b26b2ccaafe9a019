package memory

import (
	"context"
	"sync"
	"time"

	"ai-article-generator/internal/domain/repository"
)

// hitWindow 单个 key 的请求时间点，window 用于判断整个 key 是否过期
type hitWindow struct {
	hits   []time.Time
	window time.Duration
}

// RateLimiter 进程内滑动窗口限流器
type RateLimiter struct {
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*hitWindow
}

var _ repository.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter 创建限流器
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{now: time.Now, windows: make(map[string]*hitWindow)}
}

// Allow 检查是否允许请求
func (l *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok {
		w = &hitWindow{}
		l.windows[key] = w
	}
	w.window = window
	w.hits = prune(w.hits, now.Add(-window))

	if len(w.hits) >= limit {
		if len(w.hits) == 0 {
			delete(l.windows, key)
		}
		return false, nil
	}
	w.hits = append(w.hits, now)
	return true, nil
}

// Sweep 删除窗口内已无请求的 key，返回删除数量
func (l *RateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for key, w := range l.windows {
		w.hits = prune(w.hits, now.Add(-w.window))
		if len(w.hits) == 0 {
			delete(l.windows, key)
			n++
		}
	}
	return n
}

// RunSweeper 周期性清理，直到 ctx 结束
func (l *RateLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func prune(hits []time.Time, start time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(start) {
			kept = append(kept, t)
		}
	}
	return kept
}
