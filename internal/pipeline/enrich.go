package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LJTian/NewsHub/internal/fetch"
	"github.com/LJTian/NewsHub/internal/news"
	"github.com/LJTian/NewsHub/internal/source"
	"github.com/LJTian/NewsHub/internal/timeparse"
)

// 每批并发富化的候选数。批内并发、批间串行，
// 同时在途的详情请求不超过这个数，对上游保持克制。
const batchSize = 5

// enrich 对去重后的候选逐批做详情富化，输出条数恒等于输入条数。
// 单条失败降级为仅含列表数据的记录，绝不让错误出批。
func (p *Pipeline) enrich(ctx context.Context, prof *source.Profile, cands []news.Candidate, typeLabel string, now time.Time) []news.Item {
	items := make([]news.Item, len(cands))

	for start := 0; start < len(cands); start += batchSize {
		end := start + batchSize
		if end > len(cands) {
			end = len(cands)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				// 各自写独立槽位，无共享可变状态，不需要锁
				items[i] = p.enrichOne(ctx, prof, cands[i], typeLabel, now)
			}(i)
		}
		wg.Wait()
	}

	return items
}

func (p *Pipeline) enrichOne(ctx context.Context, prof *source.Profile, cand news.Candidate, typeLabel string, now time.Time) news.Item {
	if prof.ListOnly {
		return p.fromList(prof, cand, typeLabel, now)
	}

	// 详情页变化远比列表慢，始终允许走缓存，用更长的 TTL
	res, err := p.fetcher.Fetch(ctx, cand.URL, fetch.Options{
		Headers: prof.DetailHeaders,
		TTL:     p.detailTTL,
	})
	if err != nil {
		slog.Warn("detail fetch failed, using list data", "source", prof.ID, "url", cand.URL, "err", err)
		return p.fromList(prof, cand, typeLabel, now)
	}

	det, err := prof.Adapter().ParseDetail([]byte(res.Body))
	if err != nil || det == nil {
		slog.Warn("detail parse failed, using list data", "source", prof.ID, "url", cand.URL, "err", err)
		return p.fromList(prof, cand, typeLabel, now)
	}

	return p.merge(prof, cand, det, typeLabel, now)
}

// fromList 降级记录：只用列表阶段的数据拼装
func (p *Pipeline) fromList(prof *source.Profile, cand news.Candidate, typeLabel string, now time.Time) news.Item {
	it := news.Item{
		ID:        cand.ID,
		Title:     cand.Title,
		URL:       cand.URL,
		MobileURL: cand.MobileURL,
		Author:    cand.Author,
		Timestamp: timeparse.Normalize(cand.RawTime, now),
		Hot:       cand.Hot,
		Cover:     cand.Cover,
	}
	if it.Author == "" {
		it.Author = prof.Name
	}
	it.Content = p.listContent(prof, cand, typeLabel)
	p.fillDefaults(&it)
	return it
}

// merge 合并列表与详情：详情字段非空即胜出，时间按 preferDetailTime 决定先后
func (p *Pipeline) merge(prof *source.Profile, cand news.Candidate, det *news.Detail, typeLabel string, now time.Time) news.Item {
	it := news.Item{
		ID:        cand.ID,
		Title:     cand.Title,
		URL:       cand.URL,
		MobileURL: cand.MobileURL,
		Author:    cand.Author,
		Hot:       cand.Hot,
		Cover:     cand.Cover,
	}
	if det.Title != "" {
		it.Title = det.Title
	}
	if det.Author != "" {
		it.Author = det.Author
	}
	if it.Author == "" {
		it.Author = prof.Name
	}
	if det.URL != "" {
		it.URL = det.URL
	}

	// 优先侧归一失败时落到另一侧
	first, second := cand.RawTime, det.RawTime
	if prof.PreferDetailTime {
		first, second = det.RawTime, cand.RawTime
	}
	if it.Timestamp = timeparse.Normalize(first, now); it.Timestamp == 0 {
		it.Timestamp = timeparse.Normalize(second, now)
	}

	it.Content = Summarize(det.Body, prof.Noise(), p.maxRunes)
	if !Viable(it.Content) {
		it.Content = p.listContent(prof, cand, typeLabel)
	}

	p.fillDefaults(&it)
	return it
}

// listContent 列表侧正文的回退链：列表摘要 → 分类标签 → 兜底文案
func (p *Pipeline) listContent(prof *source.Profile, cand news.Candidate, typeLabel string) string {
	if s := Summarize(cand.Summary, prof.Noise(), p.maxRunes); Viable(s) {
		return s
	}
	if typeLabel != "" {
		return typeLabel
	}
	return NoContent
}

func (p *Pipeline) fillDefaults(it *news.Item) {
	if it.MobileURL == "" {
		it.MobileURL = it.URL
	}
	if it.ID == "" {
		it.ID = hashURL(it.URL)
	}
	if it.Content == "" {
		it.Content = NoContent
	}
}
