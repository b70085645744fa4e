// Package source 定义数据源适配器契约与 YAML 注册表。
// 每个源的页面结构差异全部封装在 Adapter 内，管道只调用这三个方法。
package source

import (
	"fmt"
	"regexp"

	"github.com/LJTian/NewsHub/internal/news"
)

// Adapter 单个数据源的解析策略。
// ListURL 按子分类给出列表地址；ParseList / ParseDetail 只管解析，不做网络请求。
type Adapter interface {
	ListURL(typ string) string
	ParseList(body []byte) ([]news.Candidate, error)
	ParseDetail(body []byte) (*news.Detail, error)
}

const (
	defaultMaxCandidates = 30
	maxCandidatesCeiling = 50
)

// Profile 注册表中一个源的配置。纯数据 + 装配出的适配器与噪声模式。
type Profile struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"` // 兜底署名
	Kind             string            `yaml:"kind"`
	Types            map[string]string `yaml:"types"` // 子分类 → 展示标签
	MaxCandidates    int               `yaml:"max_candidates"`
	PreferDetailTime bool              `yaml:"prefer_detail_time"`
	ListOnly         bool              `yaml:"list_only"`
	NoisePatterns    []string          `yaml:"noise_patterns"`
	DetailHeaders    map[string]string `yaml:"detail_headers"`
	Refresh          string            `yaml:"refresh"` // cron 表达式，空则不预热
	Params           map[string]string `yaml:"params"`  // kind 专属参数

	adapter Adapter
	noise   []*regexp.Regexp
}

func (p *Profile) Adapter() Adapter {
	return p.adapter
}

func (p *Profile) Noise() []*regexp.Regexp {
	return p.noise
}

// TypeLabel 子分类的展示标签，未配置返回空串
func (p *Profile) TypeLabel(typ string) string {
	if p.Types == nil {
		return ""
	}
	return p.Types[typ]
}

// Ceiling 去重后的候选上限，约束富化阶段的扇出成本
func (p *Profile) Ceiling() int {
	if p.MaxCandidates <= 0 {
		return defaultMaxCandidates
	}
	if p.MaxCandidates > maxCandidatesCeiling {
		return maxCandidatesCeiling
	}
	return p.MaxCandidates
}

func (p *Profile) param(key string) string {
	if p.Params == nil {
		return ""
	}
	return p.Params[key]
}

// init 装配适配器并编译噪声模式，注册表加载时调用
func (p *Profile) init() error {
	if p.ID == "" {
		return fmt.Errorf("source: missing id")
	}
	if p.Name == "" {
		p.Name = p.ID
	}

	var err error
	p.adapter, err = newAdapter(p)
	if err != nil {
		return fmt.Errorf("source %s: %w", p.ID, err)
	}

	p.noise = p.noise[:0]
	for _, pat := range p.NoisePatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			// 编译失败按字面量重试，配置里写裸文本也能工作
			re = regexp.MustCompile(regexp.QuoteMeta(pat))
		}
		p.noise = append(p.noise, re)
	}
	return nil
}

func newAdapter(p *Profile) (Adapter, error) {
	switch p.Kind {
	case "kr36":
		return &kr36Adapter{p: p}, nil
	case "sina":
		return &sinaAdapter{p: p}, nil
	case "rss":
		return &rssAdapter{p: p}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", p.Kind)
	}
}
