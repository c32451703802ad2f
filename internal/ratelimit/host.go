// Package ratelimit 按来源主机限制出站请求速率。
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrMissingHost URL 中没有主机部分。
var ErrMissingHost = errors.New("URL 缺少主机")

// HostLimiter 为每个主机维护一个令牌桶，同一主机两次请求至少间隔 interval。
// 不同主机之间互不影响。并发安全。
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// NewHostLimiter 创建限速器。interval <= 0 时不限速。
func NewHostLimiter(interval time.Duration) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Wait 阻塞直到 rawURL 所在主机允许下一次请求，或 ctx 结束。
// 等待会越过 ctx 截止时间时立即返回包装了 context.DeadlineExceeded 的错误。
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return &url.Error{Op: "parse", URL: rawURL, Err: ErrMissingHost}
	}
	if h.interval <= 0 {
		return ctx.Err()
	}
	if err := h.limiterFor(u.Host).Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// 下一个令牌要到截止时间之后才可用
		if _, ok := ctx.Deadline(); ok {
			return fmt.Errorf("%s: %w", u.Host, context.DeadlineExceeded)
		}
		return err
	}
	return nil
}

// Hosts 返回已经出现过的主机数量。
func (h *HostLimiter) Hosts() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.limiters)
}

func (h *HostLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.RLock()
	l, ok := h.limiters[host]
	h.mu.RUnlock()
	if ok {
		return l
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(rate.Every(h.interval), 1)
	h.limiters[host] = l
	return l
}
