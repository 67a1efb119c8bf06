package repository

import (
	"time"

	"github.com/user/findy/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeenRepository struct {
	db *gorm.DB
}

func NewSeenRepository(db *gorm.DB) *SeenRepository {
	return &SeenRepository{db: db}
}

// Add 添加已看记录
func (r *SeenRepository) Add(userID int, movieID, title, poster string) error {
	seen := &model.SeenMovie{
		UserID:  userID,
		MovieID: movieID,
		Title:   title,
		Poster:  poster,
		SeenAt:  time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(seen).Error
}

// Remove 删除已看记录
func (r *SeenRepository) Remove(userID int, movieID string) error {
	return r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.SeenMovie{}).Error
}

// IDsByUser 用户全部已看电影 ID
func (r *SeenRepository) IDsByUser(userID int) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.SeenMovie{}).
		Where("user_id = ?", userID).
		Pluck("movie_id", &ids).Error
	return ids, err
}

// ListByUser 用户已看列表
func (r *SeenRepository) ListByUser(userID, limit, offset int) ([]*model.SeenMovie, error) {
	var records []*model.SeenMovie
	err := r.db.Where("user_id = ?", userID).
		Order("seen_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// TitlesByUser 用户已看电影标题（生成提示词上下文用）
func (r *SeenRepository) TitlesByUser(userID int, limit int) ([]string, error) {
	var titles []string
	err := r.db.Model(&model.SeenMovie{}).
		Where("user_id = ?", userID).
		Order("seen_at DESC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}
