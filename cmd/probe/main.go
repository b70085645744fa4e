package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/jessevdk/go-flags"

	"github.com/LJTian/NewsHub/internal/fetch"
	"github.com/LJTian/NewsHub/internal/source"
)

// 开发辅助工具：拉取一个源的真实列表页并打印适配器解析出的候选，
// 用于核对线上页面结构是否仍与解析逻辑匹配。
var opts struct {
	Type    string `long:"type" short:"t" description:"sub-category"`
	Sources string `long:"sources" env:"SOURCES_FILE" default:"configs/sources.yaml" description:"source registry YAML file"`
	Args    struct {
		Source string `positional-arg-name:"source"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	registry, err := source.Load(opts.Sources)
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}
	prof := registry.Get(opts.Args.Source)
	if prof == nil {
		log.Fatalf("unknown source %q, registered: %v", opts.Args.Source, registry.IDs())
	}

	listURL := prof.Adapter().ListURL(opts.Type)
	if listURL == "" {
		log.Fatalf("source %q has no list url for type %q", prof.ID, opts.Type)
	}
	log.Printf("probing %s ...", listURL)

	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	c.SetRequestTimeout(15 * time.Second)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		// GBK 等编码先解成 UTF-8 再交给适配器
		body = []byte(fetch.Decode(r.Body, r.Headers.Get("Content-Type")))
	})

	if err := c.Visit(listURL); err != nil {
		log.Fatalf("visit %s: %v", listURL, err)
	}
	if len(body) == 0 {
		log.Fatalf("empty response from %s", listURL)
	}

	cands, err := prof.Adapter().ParseList(body)
	if err != nil {
		log.Fatalf("parse list: %v", err)
	}

	fmt.Printf("%d candidates from %s\n", len(cands), prof.ID)
	for i, cand := range cands {
		fmt.Printf("%2d. %s\n    url=%s time=%v\n", i+1, cand.Title, cand.URL, cand.RawTime)
	}
}
