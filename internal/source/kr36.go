package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/LJTian/NewsHub/internal/extract"
	"github.com/LJTian/NewsHub/internal/news"
)

// kr36Adapter 36氪快讯：JSON 列表 + HTML 详情页。
// 列表时间多为“N分钟前”“昨天 HH:MM”这类相对/部分表示。
type kr36Adapter struct {
	p *Profile
}

func (a *kr36Adapter) ListURL(typ string) string {
	if u := a.p.param("list_" + typ); u != "" {
		return u
	}
	if u := a.p.param("list"); u != "" {
		return u
	}
	return "https://36kr.com/pp/api/newsflash?per_page=30"
}

type kr36List struct {
	Data struct {
		Items []struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"published_at"`
			NewsURL     string `json:"news_url"`
			CoverURL    string `json:"cover_url"`
		} `json:"items"`
	} `json:"data"`
}

func (a *kr36Adapter) ParseList(body []byte) ([]news.Candidate, error) {
	var list kr36List
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("kr36: unmarshal list: %w", err)
	}

	out := make([]news.Candidate, 0, len(list.Data.Items))
	for _, it := range list.Data.Items {
		url := strings.TrimSpace(it.NewsURL)
		if url == "" {
			url = fmt.Sprintf("https://36kr.com/newsflashes/%d", it.ID)
		}
		out = append(out, news.Candidate{
			ID:      fmt.Sprintf("%d", it.ID),
			Title:   it.Title,
			URL:     url,
			Summary: it.Description,
			RawTime: it.PublishedAt,
			Cover:   it.CoverURL,
		})
	}
	return out, nil
}

var kr36BodyChain = extract.Chain{
	Strategies: []extract.Strategy{
		extract.Selector("div.article-content"),
		extract.Selector("div.common-width.content"),
		extract.Meta("description"),
		extract.Readability{},
	},
	MinLen: 10,
}

func (a *kr36Adapter) ParseDetail(body []byte) (*news.Detail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("kr36: parse detail: %w", err)
	}

	d := &news.Detail{
		Title:  strings.TrimSpace(doc.Find("h1.article-title, h1.title").First().Text()),
		Author: strings.TrimSpace(doc.Find("a.title-icon-item, span.title-icon-item, a.author").First().Text()),
		Body:   kr36BodyChain.RunDoc(doc),
	}
	if t := strings.TrimSpace(doc.Find("span.item-time, span.article-time, time").First().Text()); t != "" {
		d.RawTime = t
	}
	return d, nil
}
