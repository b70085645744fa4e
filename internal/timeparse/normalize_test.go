package timeparse

import (
	"encoding/json"
	"testing"
	"time"
)

// 固定参考时刻：东八区 2025-01-01 12:00:00
func refNow() time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, locEast8)
}

func TestNormalizeNumeric(t *testing.T) {
	now := refNow()

	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"millis kept as-is", int64(1700000000000), 1700000000000},
		{"seconds scaled up", int64(1700000000), 1700000000000},
		{"exactly threshold treated as seconds", int64(millisThreshold), millisThreshold * 1000},
		{"just above threshold treated as millis", int64(millisThreshold + 1), millisThreshold + 1},
		{"zero is unknown", int64(0), 0},
		{"negative is unknown", int64(-5), 0},
		{"float from json decoding", float64(1700000000), 1700000000000},
		{"json.Number", json.Number("1700000000"), 1700000000000},
		{"nil is unknown", nil, 0},
		{"unsupported type is unknown", []string{"x"}, 0},
	}
	for _, c := range cases {
		if got := Normalize(c.in, now); got != c.want {
			t.Errorf("%s: Normalize(%v) = %d, want %d", c.name, c.in, got, c.want)
		}
	}
}

func TestNormalizeStringDigits(t *testing.T) {
	now := refNow()

	if got := NormalizeString("1700000000", now); got != 1700000000000 {
		t.Fatalf("digit seconds: got %d", got)
	}
	if got := NormalizeString("1700000000000", now); got != 1700000000000 {
		t.Fatalf("digit millis: got %d", got)
	}
}

func TestNormalizeStringRelative(t *testing.T) {
	now := refNow()

	cases := []struct {
		in   string
		want int64
	}{
		{"10分钟前", now.Add(-10 * time.Minute).UnixMilli()},
		{"2小时前", now.Add(-2 * time.Hour).UnixMilli()},
		{"10 minutes ago", now.Add(-10 * time.Minute).UnixMilli()},
		{"1 minute ago", now.Add(-1 * time.Minute).UnixMilli()},
		{"2 hours ago", now.Add(-2 * time.Hour).UnixMilli()},
	}
	for _, c := range cases {
		if got := NormalizeString(c.in, now); got != c.want {
			t.Errorf("NormalizeString(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNormalizeStringClock(t *testing.T) {
	now := refNow()

	want := time.Date(2025, 1, 1, 11, 50, 0, 0, locEast8).UnixMilli()
	if got := NormalizeString("11:50", now); got != want {
		t.Fatalf("bare clock: got %d, want %d", got, want)
	}

	want = time.Date(2024, 12, 31, 8, 30, 0, 0, locEast8).UnixMilli()
	if got := NormalizeString("昨天 08:30", now); got != want {
		t.Fatalf("昨天: got %d, want %d", got, want)
	}
	if got := NormalizeString("yesterday 08:30", now); got != want {
		t.Fatalf("yesterday: got %d, want %d", got, want)
	}

	if got := NormalizeString("99:99", now); got != 0 {
		t.Fatalf("invalid clock should be unknown, got %d", got)
	}
}

func TestNormalizeStringChineseDates(t *testing.T) {
	now := refNow()

	cases := []struct {
		in   string
		want time.Time
	}{
		{"6月1日", time.Date(2025, 6, 1, 0, 0, 0, 0, locEast8)},
		{"6月1日 08:30", time.Date(2025, 6, 1, 8, 30, 0, 0, locEast8)},
		{"12月31日 23:59", time.Date(2025, 12, 31, 23, 59, 0, 0, locEast8)},
		{"2024年6月1日", time.Date(2024, 6, 1, 0, 0, 0, 0, locEast8)},
		{"2024年6月1日 08:30", time.Date(2024, 6, 1, 8, 30, 0, 0, locEast8)},
		{"2024年6月1日 08:30:15", time.Date(2024, 6, 1, 8, 30, 15, 0, locEast8)},
	}
	for _, c := range cases {
		if got := NormalizeString(c.in, now); got != c.want.UnixMilli() {
			t.Errorf("NormalizeString(%q) = %d, want %d", c.in, got, c.want.UnixMilli())
		}
	}
}

func TestNormalizeStringGeneric(t *testing.T) {
	now := refNow()

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, locEast8)},
		{"2025/6/1", time.Date(2025, 6, 1, 0, 0, 0, 0, locEast8)},
		{"2025-06-01 08:30", time.Date(2025, 6, 1, 8, 30, 0, 0, locEast8)},
		{"2025-06-01T08:30:15", time.Date(2025, 6, 1, 8, 30, 15, 0, locEast8)},
		{"2025/6/1 8:5", time.Date(2025, 6, 1, 8, 5, 0, 0, locEast8)},
	}
	for _, c := range cases {
		if got := NormalizeString(c.in, now); got != c.want.UnixMilli() {
			t.Errorf("NormalizeString(%q) = %d, want %d", c.in, got, c.want.UnixMilli())
		}
	}
}

func TestNormalizeStringUnknown(t *testing.T) {
	now := refNow()

	for _, s := range []string{"", "   ", "????", "刚刚", "not a date", "2025-13-40", "13月1日"} {
		if got := NormalizeString(s, now); got != 0 {
			t.Errorf("NormalizeString(%q) = %d, want 0", s, got)
		}
	}
}

// 格式化后再解析应得到同一时刻（秒级精度）
func TestFormatRoundTrip(t *testing.T) {
	now := refNow()

	ms := time.Date(2025, 6, 1, 8, 30, 15, 0, locEast8).UnixMilli()
	s := Format(ms)
	if s != "2025-06-01 08:30:15" {
		t.Fatalf("Format(%d) = %q", ms, s)
	}
	if got := NormalizeString(s, now); got != ms {
		t.Fatalf("round trip: got %d, want %d", got, ms)
	}

	if Format(0) != "" {
		t.Fatalf("Format(0) should be empty")
	}
}
