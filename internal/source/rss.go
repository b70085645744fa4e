package source

import (
	"crypto/sha256"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/LJTian/NewsHub/internal/extract"
	"github.com/LJTian/NewsHub/internal/news"
)

// rssAdapter RSS/Atom 聚合源。每个子分类对应一个 feed 地址：
// params.feed 为默认，params.feed_<type> 覆盖。
type rssAdapter struct {
	p *Profile
}

func (a *rssAdapter) ListURL(typ string) string {
	if typ != "" {
		if u := a.p.param("feed_" + typ); u != "" {
			return u
		}
	}
	return a.p.param("feed")
}

func (a *rssAdapter) ParseList(body []byte) ([]news.Candidate, error) {
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("rss: parse feed: %w", err)
	}

	out := make([]news.Candidate, 0, len(feed.Items))
	for _, it := range feed.Items {
		// RFC 时间交给 gofeed 解析好再转毫秒；解析不出时保留原始串碰运气
		var raw any = it.Published
		if it.PublishedParsed != nil {
			raw = it.PublishedParsed.UnixMilli()
		} else if it.UpdatedParsed != nil {
			raw = it.UpdatedParsed.UnixMilli()
		}

		author := ""
		if it.Author != nil {
			author = it.Author.Name
		}

		cover := ""
		if it.Image != nil {
			cover = it.Image.URL
		}

		summary := it.Description
		if summary == "" {
			summary = it.Content
		}

		out = append(out, news.Candidate{
			ID:      stableID(it.GUID, it.Link),
			Title:   it.Title,
			URL:     it.Link,
			Author:  author,
			Summary: summary,
			RawTime: raw,
			Cover:   cover,
		})
	}
	return out, nil
}

var rssBodyChain = extract.Chain{
	Strategies: []extract.Strategy{
		extract.Selector("article"),
		extract.Meta("og:description"),
		extract.Readability{},
	},
	MinLen: 10,
}

func (a *rssAdapter) ParseDetail(body []byte) (*news.Detail, error) {
	return &news.Detail{Body: rssBodyChain.Run(body)}, nil
}

// stableID GUID 优先，缺失时从链接哈希出稳定 id
func stableID(guid, link string) string {
	if guid != "" {
		return guid
	}
	if link == "" {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(link)))[:16]
}
