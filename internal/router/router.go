package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/findy/internal/handler"
	"github.com/user/findy/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// ==================== 用户级 API（需要登录）====================
	api := r.Group("/api")
	api.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		api.GET("/me", h.Me)

		// 推荐生成与当日批次
		api.POST("/recommendations/generate", h.GenerateRecommendations)
		api.GET("/recommendations/today", h.TodayRecommendations)

		// 电影记录与交互标记
		api.GET("/movies", h.ListMovies)
		api.GET("/movies/:id", h.GetMovie)
		api.POST("/movies/:id/like", h.Like)
		api.DELETE("/movies/:id/like", h.Unlike)
		api.POST("/movies/:id/dislike", h.Dislike)
		api.DELETE("/movies/:id/dislike", h.Undislike)
		api.POST("/movies/:id/favorite", h.Favorite)
		api.DELETE("/movies/:id/favorite", h.Unfavorite)
		api.POST("/movies/:id/seen", h.MarkSeen)
		api.DELETE("/movies/:id/seen", h.UnmarkSeen)
		api.POST("/movies/:id/tonight", h.SelectTonight)
		api.DELETE("/movies/:id/tonight", h.UnselectTonight)

		// 偏好
		api.GET("/preferences", h.GetPreferences)
		api.PUT("/preferences", h.UpdatePreferences)

		// 已看与排除集合
		api.GET("/seen", h.ListSeen)
		api.GET("/exclusions", h.ListExclusions)

		// 历史清理
		api.POST("/history/cleanup", h.CleanupHistory)
	}
}
