package pipeline

import (
	"testing"
	"time"

	"github.com/LJTian/NewsHub/internal/news"
	"github.com/LJTian/NewsHub/internal/timeparse"
)

func refNow() time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, timeparse.Location())
}

func TestResolveCutoff(t *testing.T) {
	now := refNow()
	midnight := time.Date(2025, 1, 1, 0, 0, 0, 0, timeparse.Location())

	cases := []struct {
		window string
		want   time.Time
	}{
		{"today", midnight},
		{"3", now.Add(-3 * 24 * time.Hour)},
		{"1", now.Add(-24 * time.Hour)},
		// 识别不了的口径一律按 today 处理
		{"", midnight},
		{"0", midnight},
		{"-2", midnight},
		{"garbage", midnight},
	}
	for _, c := range cases {
		if got := ResolveCutoff(c.window, now); !got.Equal(c.want) {
			t.Errorf("ResolveCutoff(%q) = %v, want %v", c.window, got, c.want)
		}
	}
}

func TestFilterKeepsUnknownTimestamps(t *testing.T) {
	now := refNow()
	items := []news.Item{
		{ID: "1", Timestamp: 0},
		{ID: "2", Timestamp: now.Add(-30 * 24 * time.Hour).UnixMilli()},
	}

	for _, window := range []string{"today", "1", "999", "???"} {
		out := FilterByWindow(items, window, now)
		found := false
		for _, it := range out {
			if it.ID == "1" {
				found = true
			}
		}
		if !found {
			t.Errorf("window %q dropped the unknown-timestamp item", window)
		}
	}
}

// 截止时刻边界是闭区间：恰在零点保留，早一毫秒排除
func TestFilterMidnightInclusive(t *testing.T) {
	now := refNow()
	midnight := time.Date(2025, 1, 1, 0, 0, 0, 0, timeparse.Location()).UnixMilli()

	items := []news.Item{
		{ID: "at", Timestamp: midnight},
		{ID: "before", Timestamp: midnight - 1},
	}

	out := FilterByWindow(items, "today", now)
	if len(out) != 1 || out[0].ID != "at" {
		t.Fatalf("FilterByWindow = %+v", out)
	}
}

func TestFilterNDays(t *testing.T) {
	now := refNow()
	items := []news.Item{
		{ID: "recent", Timestamp: now.Add(-36 * time.Hour).UnixMilli()},
		{ID: "old", Timestamp: now.Add(-80 * time.Hour).UnixMilli()},
	}

	out := FilterByWindow(items, "2", now)
	if len(out) != 1 || out[0].ID != "recent" {
		t.Fatalf("FilterByWindow(2d) = %+v", out)
	}
}
