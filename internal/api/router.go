package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsHub/internal/news"
	"github.com/LJTian/NewsHub/internal/pipeline"
	"github.com/LJTian/NewsHub/internal/source"
)

// Runner 管道执行契约，便于用假实现测试路由
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) news.Envelope
}

type Server struct {
	registry *source.Registry
	pipe     Runner
}

func NewServer(registry *source.Registry, pipe Runner) *Server {
	return &Server{registry: registry, pipe: pipe}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/sources", s.listSources)
		v1.GET("/news/:source", s.news)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listSources(c *gin.Context) {
	profiles := s.registry.Profiles()
	list := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		list = append(list, gin.H{
			"id":       p.ID,
			"name":     p.Name,
			"types":    p.Types,
			"listOnly": p.ListOnly,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    list,
	})
}

// news 聚合一个源的新闻。
// 参数：type 子分类；range 时效窗口（默认 today）；
// cache=false|0 绕过列表缓存；limit 截断返回条数。
func (s *Server) news(c *gin.Context) {
	id := c.Param("source")
	if s.registry.Get(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "unknown source",
		})
		return
	}

	cache := c.Query("cache")
	req := pipeline.Request{
		Source:  id,
		Type:    c.Query("type"),
		Window:  c.DefaultQuery("range", "today"),
		NoCache: cache == "false" || cache == "0",
	}

	env := s.pipe.Run(c.Request.Context(), req)

	data := env.Data
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit < len(data) {
		data = data[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       "ok",
		"message":    "success",
		"updateTime": env.UpdateTime,
		"fromCache":  env.FromCache,
		"total":      len(data),
		"data":       data,
	})
}
