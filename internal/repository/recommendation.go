package repository

import (
	"errors"
	"time"

	"github.com/user/findy/internal/model"
	"gorm.io/gorm"
)

type RecommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// ReplaceForDay 写入当日批次，同一用户同一天的旧批次整体替换
func (r *RecommendationRepository) ReplaceForDay(rec *model.DailyRecommendation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND day = ?", rec.UserID, rec.Day).
			Delete(&model.DailyRecommendation{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

// GetByUserAndDay 获取某用户某天的批次，不存在返回 nil
func (r *RecommendationRepository) GetByUserAndDay(userID int, day string) (*model.DailyRecommendation, error) {
	var rec model.DailyRecommendation
	err := r.db.Where("user_id = ? AND day = ?", userID, day).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentMovieIDs 最近时间窗口内推荐过的电影 ID（排除集合的一部分）
func (r *RecommendationRepository) RecentMovieIDs(userID int, since time.Time) ([]string, error) {
	var batches []model.DailyRecommendation
	err := r.db.Where("user_id = ? AND generated_at > ?", userID, since).
		Find(&batches).Error
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, b := range batches {
		ids = append(ids, model.SplitList(b.MovieIDs)...)
	}
	return ids, nil
}
