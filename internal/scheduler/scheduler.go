// Package scheduler 按源配置的 cron 表达式定期跑管道预热取数缓存，
// 在线请求因此多数直接命中缓存。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/NewsHub/internal/pipeline"
	"github.com/LJTian/NewsHub/internal/source"
)

type Scheduler struct {
	cron *cron.Cron
	pipe *pipeline.Pipeline
	ids  []string // 配有 refresh 的源
}

// New 为每个配置了 refresh 的源挂一个预热任务。
// 任务集在启动时从注册表快照固定下来，热加载只影响解析行为。
func New(registry *source.Registry, pipe *pipeline.Pipeline) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, pipe: pipe}

	for _, p := range registry.Profiles() {
		if p.Refresh == "" {
			continue
		}
		id := p.ID
		if _, err := c.AddFunc(p.Refresh, func() { s.warm(id) }); err != nil {
			return nil, fmt.Errorf("scheduler: add %s: %w", id, err)
		}
		s.ids = append(s.ids, id)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟首轮预热，避免与启动期的用户请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.WarmAll()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// WarmAll 对外暴露的全量预热入口，方便手动触发
func (s *Scheduler) WarmAll() {
	for _, id := range s.ids {
		s.warm(id)
	}
}

// warm 跑一次管道，丢弃信封：副作用是取数缓存被填热
func (s *Scheduler) warm(id string) {
	start := time.Now()
	env := s.pipe.Run(context.Background(), pipeline.Request{Source: id, Window: "today"})
	slog.Info("cache warm done",
		"source", id,
		"items", len(env.Data),
		"fromCache", env.FromCache,
		"elapsed", time.Since(start).Round(time.Millisecond))
}
