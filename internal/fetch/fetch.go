// Package fetch 是管道的取数协作方：带缓存、限速与字符集解码的 HTTP 客户端。
// 列表请求与详情请求共用同一套缓存，但各自指定 TTL 与是否绕过。
package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultMaxBodyBytes = 2 << 20 // 2MB，防止超大响应拖垮内存

// 默认请求头模拟常见浏览器，部分站点会拒绝裸 UA 的请求
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
}

// Options 单次请求的选项。Headers 覆盖同名默认头（如 Referer）。
type Options struct {
	BypassCache bool
	Headers     map[string]string
	TTL         time.Duration // 缓存时长，0 用客户端默认值
	Raw         bool          // 跳过字符集解码，原样返回字节内容
}

// Result 响应正文与缓存来源标记。FromCache 仅在命中缓存时为 true。
type Result struct {
	Body      string
	FromCache bool
}

// Fetcher 管道依赖的取数契约，测试中以假实现替代
type Fetcher interface {
	Fetch(ctx context.Context, url string, opt Options) (Result, error)
}

// ClientOptions 构造 Client 的参数，零值字段取内置默认
type ClientOptions struct {
	Timeout      time.Duration
	Cache        Cache
	DefaultTTL   time.Duration
	MaxBodyBytes int64
	PerHostRPS   float64 // 每主机每秒请求数上限，礼貌性限速而非硬配额
}

// Client 是 Fetcher 的 HTTP 实现
type Client struct {
	httpClient *http.Client
	cache      Cache
	defaultTTL time.Duration
	maxBody    int64
	hostRate   rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewClient(opt ClientOptions) *Client {
	if opt.Timeout <= 0 {
		opt.Timeout = 15 * time.Second
	}
	if opt.DefaultTTL <= 0 {
		opt.DefaultTTL = 2 * time.Minute
	}
	if opt.MaxBodyBytes <= 0 {
		opt.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opt.PerHostRPS <= 0 {
		opt.PerHostRPS = 4
	}
	return &Client{
		httpClient: &http.Client{Timeout: opt.Timeout},
		cache:      opt.Cache,
		defaultTTL: opt.DefaultTTL,
		maxBody:    opt.MaxBodyBytes,
		hostRate:   rate.Limit(opt.PerHostRPS),
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Fetch 按缓存→限速→请求→解码→回写缓存的顺序执行。
// BypassCache 只跳过缓存读取，成功响应仍会回写，便于后续请求命中。
func (c *Client) Fetch(ctx context.Context, rawURL string, opt Options) (Result, error) {
	key := cacheKey(rawURL)
	if !opt.BypassCache && c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			return Result{Body: body, FromCache: true}, nil
		}
	}

	if err := c.waitHost(ctx, rawURL); err != nil {
		return Result{}, fmt.Errorf("fetch %s: wait limiter: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: build request: %w", rawURL, err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range opt.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: read body: %w", rawURL, err)
	}

	body := string(raw)
	if !opt.Raw {
		body = Decode(raw, resp.Header.Get("Content-Type"))
	}

	// 仅缓存成功响应
	if c.cache != nil {
		ttl := opt.TTL
		if ttl <= 0 {
			ttl = c.defaultTTL
		}
		c.cache.Set(ctx, key, body, ttl)
	}

	return Result{Body: body}, nil
}

// waitHost 对同一主机做限速，避免批量抓取压垮上游
func (c *Client) waitHost(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	c.mu.Lock()
	lim, ok := c.limiters[u.Host]
	if !ok {
		lim = rate.NewLimiter(c.hostRate, 1)
		c.limiters[u.Host] = lim
	}
	c.mu.Unlock()
	return lim.Wait(ctx)
}

func cacheKey(rawURL string) string {
	h := sha1.New()
	h.Write([]byte(rawURL))
	return "fetch:" + hex.EncodeToString(h.Sum(nil))
}
