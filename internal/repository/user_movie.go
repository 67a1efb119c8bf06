package repository

import (
	"errors"
	"time"

	"github.com/user/findy/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserMovieRepository struct {
	db *gorm.DB
}

func NewUserMovieRepository(db *gorm.DB) *UserMovieRepository {
	return &UserMovieRepository{db: db}
}

// 批量更新时需要覆盖的快照与标记字段
var userMovieUpsertColumns = []string{
	"title", "summary", "poster", "year", "genres", "platforms",
	"director", "actors", "content_rating", "awards", "reason",
	"runtime", "rating", "imdb_id",
	"is_current_pick", "is_in_history", "picked_at", "last_updated",
}

// Upsert 更新或插入单条交互记录
func (r *UserMovieRepository) Upsert(m *model.UserMovie) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns(userMovieUpsertColumns),
	}).Create(m).Error
}

// UpsertBatch 批量写入一个生成批次
func (r *UserMovieRepository) UpsertBatch(records []*model.UserMovie) error {
	for _, m := range records {
		if err := r.Upsert(m); err != nil {
			return err
		}
	}
	return nil
}

// Save 保存完整记录（交互标记变更后）
func (r *UserMovieRepository) Save(m *model.UserMovie) error {
	return r.db.Save(m).Error
}

// Delete 删除记录
func (r *UserMovieRepository) Delete(userID int, movieID string) error {
	return r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.UserMovie{}).Error
}

// GetByUserAndMovie 获取某用户对某电影的记录，不存在返回 nil
func (r *UserMovieRepository) GetByUserAndMovie(userID int, movieID string) (*model.UserMovie, error) {
	var rec model.UserMovie
	err := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByUser 按标记筛选用户记录
// flag 为空时返回全部，否则为布尔标记列名（如 is_favorite）
func (r *UserMovieRepository) ListByUser(userID int, flag string, limit, offset int) ([]*model.UserMovie, error) {
	query := r.db.Where("user_id = ?", userID)
	switch flag {
	case "current_pick":
		query = query.Where("is_current_pick = ?", true)
	case "history":
		query = query.Where("is_in_history = ?", true)
	case "liked":
		query = query.Where("is_liked = ?", true)
	case "disliked":
		query = query.Where("is_disliked = ?", true)
	case "favorite":
		query = query.Where("is_favorite = ?", true)
	case "seen":
		query = query.Where("is_seen = ?", true)
	case "tonight":
		query = query.Where("is_selected_for_tonight = ?", true)
	}

	var records []*model.UserMovie
	err := query.Order("last_updated DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// ListHistory 按推荐时间倒序返回全部历史记录（清理任务用，不分页）
func (r *UserMovieRepository) ListHistory(userID int) ([]*model.UserMovie, error) {
	var records []*model.UserMovie
	err := r.db.Where("user_id = ? AND is_in_history = ?", userID, true).
		Order("picked_at DESC NULLS LAST").
		Find(&records).Error
	return records, err
}

// RecentInteractionTitles 最近交互过的电影标题（喜欢/不喜欢/历史），作为生成提示词上下文
func (r *UserMovieRepository) RecentInteractionTitles(userID int, limit int) ([]string, error) {
	var titles []string
	err := r.db.Model(&model.UserMovie{}).
		Where("user_id = ? AND (is_liked = ? OR is_disliked = ? OR is_in_history = ?)", userID, true, true, true).
		Order("last_updated DESC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}

// ClearCurrentPicks 清除用户当前推荐标记（新批次替换旧批次前调用）
func (r *UserMovieRepository) ClearCurrentPicks(userID int) error {
	return r.db.Model(&model.UserMovie{}).
		Where("user_id = ? AND is_current_pick = ?", userID, true).
		Updates(map[string]interface{}{
			"is_current_pick": false,
			"last_updated":    time.Now(),
		}).Error
}

// UserIDsWithHistory 有历史记录的用户列表（定时清理任务用）
func (r *UserMovieRepository) UserIDsWithHistory() ([]int, error) {
	var ids []int
	err := r.db.Model(&model.UserMovie{}).
		Where("is_in_history = ?", true).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}
