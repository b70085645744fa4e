package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/LJTian/NewsHub/internal/fetch"
	"github.com/LJTian/NewsHub/internal/pipeline"
	"github.com/LJTian/NewsHub/internal/source"
)

// 单次执行一个源的聚合并把信封打印到标准输出，适合手动验证与排查
var opts struct {
	Source  string `long:"source" short:"s" required:"true" description:"source id from the registry"`
	Type    string `long:"type" short:"t" description:"sub-category"`
	Range   string `long:"range" short:"r" default:"today" description:"recency window: today or N days"`
	NoCache bool   `long:"no-cache" description:"bypass the list cache"`
	Sources string `long:"sources" env:"SOURCES_FILE" default:"configs/sources.yaml" description:"source registry YAML file"`
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
	if registry.Get(opts.Source) == nil {
		log.Fatalf("unknown source %q, registered: %v", opts.Source, registry.IDs())
	}

	// 一次性运行不需要跨进程缓存
	fetcher := fetch.NewClient(fetch.ClientOptions{Cache: fetch.NewMemoryCache()})
	pipe := pipeline.New(pipeline.Options{Registry: registry, Fetcher: fetcher})

	env := pipe.Run(context.Background(), pipeline.Request{
		Source:  opts.Source,
		Type:    opts.Type,
		Window:  opts.Range,
		NoCache: opts.NoCache,
	})

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		log.Fatalf("marshal envelope: %v", err)
	}
	fmt.Println(string(out))
}
