package main

import (
	"context"
	"crypto/subtle"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsHub/internal/api"
	"github.com/LJTian/NewsHub/internal/config"
	"github.com/LJTian/NewsHub/internal/fetch"
	"github.com/LJTian/NewsHub/internal/pipeline"
	"github.com/LJTian/NewsHub/internal/scheduler"
	"github.com/LJTian/NewsHub/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg == nil { // --help
		return
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// 未配置 redis 时退回进程内缓存，单实例部署够用
	var cache fetch.Cache
	if cfg.RedisAddr != "" {
		cache = fetch.NewRedisCache(cfg.RedisAddr)
	} else {
		cache = fetch.NewMemoryCache()
		slog.Info("redis not configured, using in-process fetch cache")
	}

	fetcher := fetch.NewClient(fetch.ClientOptions{
		Timeout:    cfg.FetchTimeout,
		Cache:      cache,
		DefaultTTL: cfg.ListTTL,
		PerHostRPS: cfg.HostRPS,
	})

	registry, err := source.Load(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}
	if err := registry.Watch(); err != nil {
		slog.Warn("sources file watch disabled", "err", err)
	}

	pipe := pipeline.New(pipeline.Options{
		Registry:  registry,
		Fetcher:   fetcher,
		ListTTL:   cfg.ListTTL,
		DetailTTL: cfg.DetailTTL,
		MaxRunes:  cfg.MaxContentRunes,
	})

	sched, err := scheduler.New(registry, pipe)
	if err != nil {
		log.Fatalf("init scheduler: %v", err)
	}
	sched.Start()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	// 配置了全局访问密码时启用 Basic Auth（/health 仍免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}
	api.NewServer(registry, pipe).RegisterRoutes(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		slog.Info("api server started", "addr", srv.Addr, "sources", len(registry.IDs()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server exit: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")
	sched.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
	slog.Info("bye")
}

// basicAuthMiddleware 为整个站点加一个简单的访问密码，/health 放行便于健康检查
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
