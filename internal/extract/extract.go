// Package extract 提供按优先级排列的正文提取策略链。
// 详情页结构常变，单一选择器不可靠，依次尝试直到拿到足够长的结果。
package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Strategy 单条提取策略：从文档里取一段文本，取不到返回空串
type Strategy interface {
	Extract(doc *goquery.Document) string
}

// Selector goquery 选择器策略，取首个匹配节点的文本
type Selector string

func (s Selector) Extract(doc *goquery.Document) string {
	return doc.Find(string(s)).First().Text()
}

// Meta 取 <meta name=... / property=...> 的 content 属性
type Meta string

func (m Meta) Extract(doc *goquery.Document) string {
	sel := "meta[name='" + string(m) + "'], meta[property='" + string(m) + "']"
	v, _ := doc.Find(sel).First().Attr("content")
	return v
}

// Readability 通用正文识别，选择器全部失手时的兜底
type Readability struct{}

func (Readability) Extract(doc *goquery.Document) string {
	htmlStr, err := doc.Html()
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(htmlStr), nil)
	if err != nil {
		return ""
	}
	return article.TextContent
}

// Chain 有序策略链。首个 trim 后长度（rune 数）达到 MinLen 的结果胜出。
type Chain struct {
	Strategies []Strategy
	MinLen     int
}

func (c Chain) Run(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return c.RunDoc(doc)
}

func (c Chain) RunDoc(doc *goquery.Document) string {
	min := c.MinLen
	if min <= 0 {
		min = 1
	}
	for _, s := range c.Strategies {
		if txt := strings.TrimSpace(s.Extract(doc)); utf8.RuneCountInString(txt) >= min {
			return txt
		}
	}
	return ""
}
