package handler

import (
	"time"

	"github.com/user/findy/internal/config"
	"github.com/user/findy/internal/repository"
	"github.com/user/findy/internal/service"
	"github.com/user/findy/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos           *repository.Repositories
	Config          *config.Config
	Cache           *utils.UserMovieCache
	Clock           utils.Clock
	UserMovies      *service.UserMovieService
	Recommendations *service.RecommendationService
	Exclusion       *service.ExclusionService
}

// NewHandler 创建处理器并装配各服务
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	clock := utils.RealClock{}

	// 缓存实例显式构造并注入，TTL 与容量来自配置
	cache := utils.NewUserMovieCache(cfg.CacheTTL, cfg.CacheCapacity, clock)

	// 外部接口客户端
	suggester := utils.NewSuggestionClient(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAITemp, cfg.SuggestTimeout)
	enricher := utils.NewOMDBClient(cfg.OMDBBaseURL, cfg.OMDBKey, cfg.EnrichTimeout)

	exclusion := service.NewExclusionService(
		repos.Seen,
		repos.Recommendation,
		repos.UserMovie,
		cache,
		clock,
		time.Duration(cfg.RecentWindowDays)*24*time.Hour,
	)

	recommendations := service.NewRecommendationService(
		repos.Preference,
		repos.UserMovie,
		repos.Recommendation,
		exclusion,
		suggester,
		enricher,
		cache,
		clock,
		utils.ConstantBackoff{Interval: cfg.RetryDelay},
		cfg.GenerateAttempts,
		cfg.ExclusionContextSize,
	)

	userMovies := service.NewUserMovieService(repos, cache, clock)

	return &Handler{
		Repos:           repos,
		Config:          cfg,
		Cache:           cache,
		Clock:           clock,
		UserMovies:      userMovies,
		Recommendations: recommendations,
		Exclusion:       exclusion,
	}
}
