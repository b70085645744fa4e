// Package config 进程配置：命令行 flag 与环境变量双通道，flag 优先。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

type Config struct {
	Port        string `long:"port" env:"APP_PORT" default:"9000" description:"HTTP listen port"`
	RedisAddr   string `long:"redis-addr" env:"REDIS_ADDR" description:"redis address for the fetch cache; empty uses the in-process cache"`
	SourcesFile string `long:"sources" env:"SOURCES_FILE" default:"configs/sources.yaml" description:"source registry YAML file"`

	ListTTL      time.Duration `long:"list-ttl" env:"LIST_CACHE_TTL" default:"2m" description:"list fetch cache TTL"`
	DetailTTL    time.Duration `long:"detail-ttl" env:"DETAIL_CACHE_TTL" default:"30m" description:"detail fetch cache TTL"`
	FetchTimeout time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15s" description:"per-request HTTP timeout"`
	HostRPS      float64       `long:"host-rps" env:"HOST_RPS" default:"4" description:"per-host requests per second"`

	MaxContentRunes int `long:"max-content-runes" env:"MAX_CONTENT_RUNES" default:"800" description:"content excerpt length cap"`

	BasicAuthUser string `long:"basic-user" env:"APP_BASIC_USER" description:"enable Basic Auth with this user"`
	BasicAuthPass string `long:"basic-pass" env:"APP_BASIC_PASS" description:"Basic Auth password"`

	Debug bool `long:"debug" env:"DEBUG" description:"enable debug logging"`
}

// Load 解析进程参数。--help 时返回 (nil, nil)，由 main 直接退出。
func Load() (*Config, error) {
	return loadFrom(os.Args[1:])
}

func loadFrom(args []string) (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}
