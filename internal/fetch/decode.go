package fetch

import (
	"mime"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// 在 HTML 头部嗅探 <meta charset="..."> 或 http-equiv 声明
var reMetaCharset = regexp.MustCompile(`(?i)charset=["']?([A-Za-z0-9_\-]+)`)

// Decode 按字符集把响应字节解成 UTF-8 字符串。
// 优先看 Content-Type 的 charset，其次嗅探正文前 1KB 的 meta 声明；
// 无提示或提示不认识时按 UTF-8 处理并清洗非法字节（部分源混编）。
func Decode(raw []byte, contentType string) string {
	cs := charsetOf(contentType)
	if cs == "" {
		head := raw
		if len(head) > 1024 {
			head = head[:1024]
		}
		if m := reMetaCharset.FindSubmatch(head); m != nil {
			cs = string(m[1])
		}
	}

	switch strings.ToLower(cs) {
	case "gbk", "gb2312":
		if out, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	case "gb18030":
		if out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	}

	return strings.ToValidUTF8(string(raw), "�")
}

func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		return params["charset"]
	}
	return ""
}
