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

// sinaAdapter 新浪滚动新闻：GBK 编码的 JSON 列表 + GB2312 详情页。
// 字符集解码在 fetch 层完成，这里拿到的已是 UTF-8。
// 列表时间是秒级 epoch 字符串，走 timeparse 的数值规则。
type sinaAdapter struct {
	p *Profile
}

func (a *sinaAdapter) ListURL(typ string) string {
	lid := a.p.param("lid_" + typ)
	if lid == "" {
		lid = a.p.param("lid")
	}
	if lid == "" {
		lid = "2509" // 全部栏目
	}
	return "https://feed.mix.sina.com.cn/api/roll/get?pageid=153&lid=" + lid + "&k=&num=30&page=1"
}

type sinaList struct {
	Result struct {
		Data []struct {
			Title     string `json:"title"`
			URL       string `json:"url"`
			WapURL    string `json:"wapurl"`
			Intro     string `json:"intro"`
			CTime     string `json:"ctime"` // 秒级 epoch，字符串形式
			MediaName string `json:"media_name"`
		} `json:"data"`
	} `json:"result"`
}

func (a *sinaAdapter) ParseList(body []byte) ([]news.Candidate, error) {
	var list sinaList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("sina: unmarshal list: %w", err)
	}

	out := make([]news.Candidate, 0, len(list.Result.Data))
	for _, it := range list.Result.Data {
		out = append(out, news.Candidate{
			Title:     it.Title,
			URL:       it.URL,
			MobileURL: it.WapURL,
			Author:    it.MediaName,
			Summary:   it.Intro,
			RawTime:   it.CTime,
		})
	}
	return out, nil
}

var sinaBodyChain = extract.Chain{
	Strategies: []extract.Strategy{
		extract.Selector("div#artibody"),
		extract.Selector("div.article"),
		extract.Meta("description"),
		extract.Readability{},
	},
	MinLen: 10,
}

func (a *sinaAdapter) ParseDetail(body []byte) (*news.Detail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sina: parse detail: %w", err)
	}

	d := &news.Detail{
		Title:  strings.TrimSpace(doc.Find("h1.main-title, h1#artibodyTitle").First().Text()),
		Author: strings.TrimSpace(doc.Find("a.source, span.source, a.media_name").First().Text()),
		Body:   sinaBodyChain.RunDoc(doc),
	}
	// 形如 “2025年01月01日 12:00”，由归一器识别
	if t := strings.TrimSpace(doc.Find("span.date, span#pub_date").First().Text()); t != "" {
		d.RawTime = t
	}
	return d, nil
}
