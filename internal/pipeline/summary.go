package pipeline

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// NoContent 摘要兜底文案。清洗后为空时返回它而不是空串，
// 下游据此区分“没有正文”和“正文就是空白”。
const NoContent = "暂无内容"

// 摘要短于该长度视同缺失，合并时改用备选正文
const minViableRunes = 10

var reSpaces = regexp.MustCompile(`\s+`)

// Summarize 把原始 HTML 或文本清洗成单行纯文本摘要：
// 去标签、还原实体、折叠空白，再按噪声模式剪尾、按 rune 截断。
// noise 中任一模式命中时，从命中位置一刀切到结尾（版权声明等都挂在文末）。
func Summarize(raw string, noise []*regexp.Regexp, maxRunes int) string {
	s := stripTags(raw)
	s = html.UnescapeString(s)
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	for _, re := range noise {
		if loc := re.FindStringIndex(s); loc != nil {
			s = strings.TrimSpace(s[:loc[0]])
		}
	}
	s = truncateRunes(s, maxRunes)
	if s == "" {
		return NoContent
	}
	return s
}

// Viable 判断摘要是否可作正文使用：非兜底文案且超过最小长度。
func Viable(s string) bool {
	if s == "" || s == NoContent {
		return false
	}
	return utf8.RuneCountInString(s) > minViableRunes
}

// stripTags 去掉 HTML 标签。标签位置补一个空格，
// 避免 </p><p> 这类相邻块的文字粘连，多余空白随后统一折叠。
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateRunes 按 rune 截断并追加省略号，防止把多字节字符砍成乱码
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
