package handler

import (
	"errors"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/findy/internal/middleware"
	"github.com/user/findy/internal/model"
	"github.com/user/findy/internal/utils"
)

// GenerateRecommendations 生成一批推荐（POST /api/recommendations/generate）
func (h *Handler) GenerateRecommendations(c *gin.Context) {
	userID := middleware.GetUserID(c)

	records, err := h.Recommendations.Generate(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingPreferences):
			// 终止类错误：引导用户去完成偏好设置
			utils.Error(c, 400, "请先完成偏好设置（至少一个类型和一个平台）")
		case errors.Is(err, model.ErrGenerationFailed):
			// 重试耗尽，前端展示可重试的错误提示
			utils.Error(c, 502, "推荐生成失败，请稍后重试")
		default:
			utils.InternalServerError(c, "")
		}
		return
	}

	utils.Success(c, records)
}

// today 当日日期，与生成批次共用注入时钟，保证日界一致
func (h *Handler) today() string {
	return h.Clock.Now().Format("2006-01-02")
}

// TodayRecommendations 当日推荐批次与当前推荐列表
func (h *Handler) TodayRecommendations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	day := h.today()

	batch, err := h.Repos.Recommendation.GetByUserAndDay(userID, day)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	picks, err := h.UserMovies.List(userID, "current_pick", 10, 0)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{"batch": batch, "picks": picks})
}

// ListMovies 按标记筛选用户电影列表（GET /api/movies?flag=favorite）
func (h *Handler) ListMovies(c *gin.Context) {
	userID := middleware.GetUserID(c)
	flag := c.Query("flag")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := h.UserMovies.List(userID, flag, limit, offset)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, records)
}

// GetMovie 单条记录（GET /api/movies/:id）
func (h *Handler) GetMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID := c.Param("id")

	rec, err := h.UserMovies.Get(userID, movieID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.NotFound(c, "")
			return
		}
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, rec)
}

// toggleFlag 交互标记开关的公共处理
func (h *Handler) toggleFlag(c *gin.Context, on bool, set func(userID int, movieID string, on bool) (*model.UserMovie, error)) {
	userID := middleware.GetUserID(c)
	movieID := c.Param("id")

	rec, err := set(userID, movieID, on)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.NotFound(c, "")
			return
		}
		utils.InternalServerError(c, "操作失败")
		return
	}

	utils.Success(c, rec)
}

// Like / Unlike
func (h *Handler) Like(c *gin.Context)   { h.toggleFlag(c, true, h.UserMovies.SetLiked) }
func (h *Handler) Unlike(c *gin.Context) { h.toggleFlag(c, false, h.UserMovies.SetLiked) }

// Dislike / Undislike
func (h *Handler) Dislike(c *gin.Context)   { h.toggleFlag(c, true, h.UserMovies.SetDisliked) }
func (h *Handler) Undislike(c *gin.Context) { h.toggleFlag(c, false, h.UserMovies.SetDisliked) }

// Favorite / Unfavorite
func (h *Handler) Favorite(c *gin.Context)   { h.toggleFlag(c, true, h.UserMovies.SetFavorite) }
func (h *Handler) Unfavorite(c *gin.Context) { h.toggleFlag(c, false, h.UserMovies.SetFavorite) }

// MarkSeen / UnmarkSeen
func (h *Handler) MarkSeen(c *gin.Context)   { h.toggleFlag(c, true, h.UserMovies.SetSeen) }
func (h *Handler) UnmarkSeen(c *gin.Context) { h.toggleFlag(c, false, h.UserMovies.SetSeen) }

// SelectTonight / UnselectTonight
func (h *Handler) SelectTonight(c *gin.Context)   { h.toggleFlag(c, true, h.UserMovies.SetTonight) }
func (h *Handler) UnselectTonight(c *gin.Context) { h.toggleFlag(c, false, h.UserMovies.SetTonight) }

// PreferenceRequest 偏好更新请求
type PreferenceRequest struct {
	Genres    []string `json:"genres" binding:"required,min=1"`
	Actors    []string `json:"actors"`
	Platforms []string `json:"platforms" binding:"required,min=1"`
}

// GetPreferences 读取偏好
func (h *Handler) GetPreferences(c *gin.Context) {
	userID := middleware.GetUserID(c)

	pref, err := h.Repos.Preference.Get(userID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if pref == nil {
		utils.NotFound(c, "尚未设置偏好")
		return
	}

	utils.Success(c, pref)
}

// UpdatePreferences 更新偏好
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求参数无效：类型与平台至少各选一个")
		return
	}

	pref := &model.UserPreference{
		UserID:    userID,
		Genres:    model.JoinList(req.Genres),
		Actors:    model.JoinList(req.Actors),
		Platforms: model.JoinList(req.Platforms),
	}
	if err := h.Repos.Preference.Upsert(pref); err != nil {
		utils.InternalServerError(c, "保存偏好失败")
		return
	}

	// 偏好变更后旧缓存无意义
	h.Cache.Invalidate(userID)

	utils.Success(c, pref)
}

// ListSeen 已看列表（GET /api/seen）
func (h *Handler) ListSeen(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.Repos.Seen.ListByUser(userID, limit, offset)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, records)
}

// ListExclusions 当前排除集合（GET /api/exclusions）
func (h *Handler) ListExclusions(c *gin.Context) {
	userID := middleware.GetUserID(c)

	excluded := h.Exclusion.ExcludedIDs(userID)
	ids := make([]string, 0, len(excluded))
	for id := range excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	utils.Success(c, ids)
}

// CleanupHistory 手动触发历史清理（POST /api/history/cleanup）
func (h *Handler) CleanupHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	keepCount, _ := strconv.Atoi(c.DefaultQuery("keep", strconv.Itoa(h.Config.HistoryKeepCount)))
	if keepCount <= 0 {
		keepCount = h.Config.HistoryKeepCount
	}

	deleted, cleared, err := h.Exclusion.CleanupHistory(userID, keepCount)
	if err != nil {
		utils.InternalServerError(c, "清理失败")
		return
	}

	utils.Success(c, gin.H{"deleted": deleted, "cleared": cleared})
}
