// Package timeparse 把各数据源五花八门的时间表示统一成 epoch 毫秒。
// 所有字符串解析都锚定东八区，参考时刻由调用方显式传入，便于测试。
package timeparse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 2000-01-01T00:00:00Z 对应的毫秒数。数值大于它视为毫秒时间戳，
// 否则按秒处理，避免为每个源单独配置时间粒度。
const millisThreshold = 946684800000

// 东八区：优先使用 IANA 时区，加载失败时退回固定偏移
var locEast8 *time.Location

func init() {
	locEast8, _ = time.LoadLocation("Asia/Shanghai")
	if locEast8 == nil {
		locEast8 = time.FixedZone("CST", 8*3600)
	}
}

// Location 返回管道统一使用的东八区时区。
func Location() *time.Location {
	return locEast8
}

var (
	reDigits = regexp.MustCompile(`^\d+$`)

	// 识别器按顺序尝试，首个命中者胜出（顺序即优先级，勿随意调整）
	reRelativeCN = regexp.MustCompile(`^(\d+)\s*(分钟|小时)前$`)
	reRelativeEN = regexp.MustCompile(`^(?i:(\d+)\s*(minute|hour)s?\s*ago)$`)
	reClock      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	reYesterday  = regexp.MustCompile(`^(?i:(?:昨天|昨日|yesterday))\s*(\d{1,2}):(\d{2})$`)
	rePartialCN  = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日(?:\s*(\d{1,2}):(\d{2}))?$`)
	reFullCN     = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日(?:\s*(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	reGeneric    = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[T ](\d{1,2}):(\d{1,2})(?::(\d{1,2}))?)?$`)
)

// Normalize 将任意上游时间表示归一为 epoch 毫秒，无法识别时返回 0。
// 数字按秒/毫秒阈值规则处理；字符串走有序识别器；其余类型一律视为未知。
func Normalize(raw any, now time.Time) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case string:
		return NormalizeString(v, now)
	case int:
		return normalizeEpoch(int64(v))
	case int64:
		return normalizeEpoch(v)
	case float64:
		return normalizeEpoch(int64(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return normalizeEpoch(n)
		}
		if f, err := v.Float64(); err == nil {
			return normalizeEpoch(int64(f))
		}
		return 0
	default:
		return 0
	}
}

// NormalizeString 解析字符串形式的时间，now 为参考时刻。
// 纯数字串按数值时间戳处理；含非数字字符的串不做数值强转，
// 只依次交给各识别器，全部未命中时返回 0 而不是报错。
func NormalizeString(s string, now time.Time) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if reDigits.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0
		}
		return normalizeEpoch(n)
	}

	bt := now.In(locEast8)

	// ① 相对时间：“N分钟前”“N小时前”及英文变体
	if m := reRelativeCN.FindStringSubmatch(s); m != nil {
		return relativeMillis(now, m[1], m[2] == "分钟")
	}
	if m := reRelativeEN.FindStringSubmatch(s); m != nil {
		return relativeMillis(now, m[1], strings.EqualFold(m[2], "minute"))
	}

	// ② 裸 HH:MM：当天该时刻，秒归零
	if m := reClock.FindStringSubmatch(s); m != nil {
		return clockMillis(bt, 0, m[1], m[2])
	}

	// ③ “昨天 HH:MM”变体
	if m := reYesterday.FindStringSubmatch(s); m != nil {
		return clockMillis(bt, -1, m[1], m[2])
	}

	// ④ 无年份的“M月D日[ HH:MM]”：补当前年份，缺省时间为当天零点
	if m := rePartialCN.FindStringSubmatch(s); m != nil {
		return dateMillis(strconv.Itoa(bt.Year()), m[1], m[2], m[3], m[4], "")
	}

	// ⑤ 带年份的完整中文日期
	if m := reFullCN.FindStringSubmatch(s); m != nil {
		return dateMillis(m[1], m[2], m[3], m[4], m[5], m[6])
	}

	// ⑥ 斜杠/横杠分隔的通用日期时间，可带 T 分隔符与可选秒
	if m := reGeneric.FindStringSubmatch(s); m != nil {
		return dateMillis(m[1], m[2], m[3], m[4], m[5], m[6])
	}

	return 0
}

// Format 把 epoch 毫秒格式化成东八区 "2006-01-02 15:04:05"，0 返回空串。
func Format(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return FormatTime(time.UnixMilli(ms))
}

// FormatTime 按管道统一格式输出东八区时间。
func FormatTime(t time.Time) string {
	return t.In(locEast8).Format("2006-01-02 15:04:05")
}

func normalizeEpoch(n int64) int64 {
	if n <= 0 {
		return 0
	}
	if n > millisThreshold {
		return n
	}
	return n * 1000
}

func relativeMillis(now time.Time, count string, minutes bool) int64 {
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return 0
	}
	unit := time.Hour
	if minutes {
		unit = time.Minute
	}
	return now.Add(-time.Duration(n) * unit).UnixMilli()
}

// clockMillis 取参考日（偏移 dayOffset 天）的 HH:MM:00
func clockMillis(bt time.Time, dayOffset int, hh, mm string) int64 {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > 23 || m > 59 {
		return 0
	}
	t := time.Date(bt.Year(), bt.Month(), bt.Day()+dayOffset, h, m, 0, 0, locEast8)
	return t.UnixMilli()
}

// dateMillis 把各字段拼装为东八区时刻。时间字段缺省时取当天零点，秒缺省为 00。
// 字段超出合法范围时视为无法识别，返回 0 而不是让 time.Date 归一化出错误日期。
func dateMillis(yy, mo, dd, hh, mm, ss string) int64 {
	y, _ := strconv.Atoi(yy)
	m, _ := strconv.Atoi(mo)
	d, _ := strconv.Atoi(dd)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0
	}

	h, mi, sec := 0, 0, 0
	if hh != "" {
		h, _ = strconv.Atoi(hh)
		mi, _ = strconv.Atoi(mm)
	}
	if ss != "" {
		sec, _ = strconv.Atoi(ss)
	}
	if h > 23 || mi > 59 || sec > 59 {
		return 0
	}

	return time.Date(y, time.Month(m), d, h, mi, sec, 0, locEast8).UnixMilli()
}
