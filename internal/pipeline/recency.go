package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/NewsHub/internal/news"
	"github.com/LJTian/NewsHub/internal/timeparse"
)

// ResolveCutoff 把时间窗口参数解析成截止时刻。
// 正整数 N 表示 now − N 天；"today" 与其余一切值（含 0、负数、乱码）
// 都取 now 所在东八区日历日的零点。
func ResolveCutoff(window string, now time.Time) time.Time {
	window = strings.TrimSpace(window)
	if n, err := strconv.Atoi(window); err == nil && n > 0 {
		return now.Add(-time.Duration(n) * 24 * time.Hour)
	}
	bt := now.In(timeparse.Location())
	return time.Date(bt.Year(), bt.Month(), bt.Day(), 0, 0, 0, 0, timeparse.Location())
}

// FilterByWindow 留下窗口内的条目。时间未知的条目无法排除，一律保留；
// 恰好等于截止时刻的条目算在窗口内（>=）。
func FilterByWindow(items []news.Item, window string, now time.Time) []news.Item {
	cutoff := ResolveCutoff(window, now).UnixMilli()
	out := make([]news.Item, 0, len(items))
	for _, it := range items {
		if it.Timestamp == 0 || it.Timestamp >= cutoff {
			out = append(out, it)
		}
	}
	return out
}
