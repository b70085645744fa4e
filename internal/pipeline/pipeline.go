// Package pipeline 实现通用聚合管道：
// 列表抓取 → 去重 → 批量详情富化 → 时间归一 → 时效过滤 → 信封组装。
// 任何错误都在边界内降级处理，Run 永远返回结构完整的信封。
package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/LJTian/NewsHub/internal/fetch"
	"github.com/LJTian/NewsHub/internal/news"
	"github.com/LJTian/NewsHub/internal/source"
	"github.com/LJTian/NewsHub/internal/timeparse"
)

// Request 一次管道调用的参数
type Request struct {
	Source  string
	Type    string // 子分类，可为空
	Window  string // 时效窗口："today" 或天数
	NoCache bool   // 绕过列表缓存；详情不受影响
}

// Options 装配 Pipeline 的依赖与参数
type Options struct {
	Registry  *source.Registry
	Fetcher   fetch.Fetcher
	ListTTL   time.Duration
	DetailTTL time.Duration
	MaxRunes  int              // 摘要最大 rune 数
	Clock     func() time.Time // 缺省 time.Now，测试注入固定时刻
}

type Pipeline struct {
	registry  *source.Registry
	fetcher   fetch.Fetcher
	listTTL   time.Duration
	detailTTL time.Duration
	maxRunes  int
	clock     func() time.Time
}

func New(opt Options) *Pipeline {
	if opt.ListTTL <= 0 {
		opt.ListTTL = 2 * time.Minute
	}
	if opt.DetailTTL <= 0 {
		opt.DetailTTL = 30 * time.Minute
	}
	if opt.MaxRunes <= 0 {
		opt.MaxRunes = 800
	}
	if opt.Clock == nil {
		opt.Clock = time.Now
	}
	return &Pipeline{
		registry:  opt.Registry,
		fetcher:   opt.Fetcher,
		listTTL:   opt.ListTTL,
		detailTTL: opt.DetailTTL,
		maxRunes:  opt.MaxRunes,
		clock:     opt.Clock,
	}
}

// Run 执行一次聚合。源未注册、列表抓取或解析失败时
// 返回空条目的完整信封，错误只记日志，不向上抛。
func (p *Pipeline) Run(ctx context.Context, req Request) (env news.Envelope) {
	now := p.clock()
	env = news.Envelope{
		UpdateTime: timeparse.FormatTime(now),
		Data:       []news.Item{},
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("pipeline panic recovered", "source", req.Source, "panic", r)
			env.FromCache = false
			env.Data = []news.Item{}
		}
	}()

	prof := p.registry.Get(req.Source)
	if prof == nil {
		slog.Error("unknown source", "source", req.Source)
		return env
	}

	listURL := prof.Adapter().ListURL(req.Type)
	if listURL == "" {
		slog.Error("no list url for type", "source", req.Source, "type", req.Type)
		return env
	}

	res, err := p.fetcher.Fetch(ctx, listURL, fetch.Options{
		BypassCache: req.NoCache,
		TTL:         p.listTTL,
	})
	if err != nil {
		slog.Error("list fetch failed", "source", req.Source, "url", listURL, "err", err)
		return env
	}

	cands, err := prof.Adapter().ParseList([]byte(res.Body))
	if err != nil {
		slog.Error("list parse failed", "source", req.Source, "url", listURL, "err", err)
		return env
	}

	cands = sanitize(cands)
	cands = Dedupe(cands, prof.Ceiling())

	items := p.enrich(ctx, prof, cands, prof.TypeLabel(req.Type), now)
	items = FilterByWindow(items, req.Window, now)

	env.FromCache = res.FromCache
	env.Data = items
	slog.Debug("pipeline run done", "source", req.Source, "candidates", len(cands), "items", len(items), "fromCache", res.FromCache)
	return env
}

// sanitize 丢掉没有 URL 或标题为空的候选，标题顺手去空白
func sanitize(cands []news.Candidate) []news.Candidate {
	out := cands[:0]
	for _, c := range cands {
		c.Title = strings.TrimSpace(c.Title)
		if c.URL == "" || c.Title == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}
