package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func newTestClient(cache Cache) *Client {
	return NewClient(ClientOptions{
		Timeout:    5 * time.Second,
		Cache:      cache,
		DefaultTTL: time.Minute,
		PerHostRPS: 1000, // 测试中不让限速拖慢
	})
}

func TestFetchMergesHeaders(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(nil)
	res, err := c.Fetch(context.Background(), srv.URL, Options{
		Headers: map[string]string{"Referer": "https://example.com/list"},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if res.Body != "ok" || res.FromCache {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("default browser UA not applied, got %q", gotUA)
	}
	if gotReferer != "https://example.com/list" {
		t.Errorf("per-call header not applied, got %q", gotReferer)
	}
}

func TestFetchCacheHitAndBypass(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	c := newTestClient(NewMemoryCache())
	ctx := context.Background()

	res1, err := c.Fetch(ctx, srv.URL, Options{})
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if res1.FromCache {
		t.Fatalf("first fetch should not come from cache")
	}

	res2, err := c.Fetch(ctx, srv.URL, Options{})
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !res2.FromCache || res2.Body != "body" {
		t.Fatalf("second fetch should hit cache: %+v", res2)
	}
	if hits != 1 {
		t.Fatalf("upstream hit %d times, want 1", hits)
	}

	// 绕过缓存会再打一次上游，但仍回写缓存
	res3, err := c.Fetch(ctx, srv.URL, Options{BypassCache: true})
	if err != nil {
		t.Fatalf("bypass fetch: %v", err)
	}
	if res3.FromCache {
		t.Fatalf("bypass fetch must not report cache provenance")
	}
	if hits != 2 {
		t.Fatalf("upstream hit %d times, want 2", hits)
	}
}

func TestFetchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(NewMemoryCache())
	if _, err := c.Fetch(context.Background(), srv.URL, Options{}); err == nil {
		t.Fatalf("expected error for 502")
	}
	// 失败响应不应进缓存
	if _, ok := c.cache.Get(context.Background(), cacheKey(srv.URL)); ok {
		t.Fatalf("non-2xx body must not be cached")
	}
}

func TestFetchDecodesGBK(t *testing.T) {
	const text = "新闻正文：黄金价格上涨"
	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=GBK")
		w.Write(gbk)
	}))
	defer srv.Close()

	c := newTestClient(nil)
	res, err := c.Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if res.Body != text {
		t.Fatalf("decode mismatch: got %q, want %q", res.Body, text)
	}

	// Raw 请求不做解码
	raw, err := c.Fetch(context.Background(), srv.URL, Options{Raw: true})
	if err != nil {
		t.Fatalf("raw fetch error: %v", err)
	}
	if raw.Body != string(gbk) {
		t.Fatalf("raw fetch should keep original bytes")
	}
}

func TestDecodeSniffsMetaCharset(t *testing.T) {
	const text = "页面内容"
	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(`<html><head><meta charset="gb2312"></head><body>` + text + `</body></html>`))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	got := Decode(gbk, "")
	if want := text; !strings.Contains(got, want) {
		t.Fatalf("Decode did not sniff meta charset: %q", got)
	}
}

func TestDecodeFallsBackToUTF8(t *testing.T) {
	in := []byte("plain utf-8 \xff broken")
	got := Decode(in, "text/plain")
	if got == string(in) {
		t.Fatalf("invalid bytes should be scrubbed")
	}
	if !strings.Contains(got, "plain utf-8") {
		t.Fatalf("valid prefix lost: %q", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "k", "v", 20*time.Millisecond)
	if v, ok := c.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("fresh entry should hit")
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expired entry should miss")
	}
}

