// Package webclient 提供带浏览器请求头的 HTTP 客户端，订阅源和文章页面抓取共用。
package webclient

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultUserAgent 模拟常见桌面浏览器，避免被简单的反爬策略拦截。
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// DefaultAccept 浏览器默认 Accept 头。
	DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	// DefaultAcceptLanguage 优先葡萄牙语（巴西）。
	DefaultAcceptLanguage = "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7"
	// DefaultTimeout 单次请求超时。
	DefaultTimeout = 15 * time.Second
)

// Client 带固定请求头和超时的 HTTP 客户端。
type Client struct {
	http           *http.Client
	userAgent      string
	acceptLanguage string
}

// Options 客户端配置，零值字段使用默认值。
type Options struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
}

// New 创建客户端。
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = DefaultAcceptLanguage
	}
	return &Client{
		http:           &http.Client{Timeout: opts.Timeout},
		userAgent:      opts.UserAgent,
		acceptLanguage: opts.AcceptLanguage,
	}
}

// Get 发起 GET 请求。状态码非 2xx 时关闭响应体并返回 *StatusError。
// 调用方负责关闭返回的响应体。
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", DefaultAccept)
	req.Header.Set("Accept-Language", c.acceptLanguage)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return resp, nil
}

// StatusError 服务端返回了非 2xx 状态码。
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.URL)
}
